package query

import (
	"errors"
	"fmt"
)

// Limits on filter expressions, so a hostile cell cannot exhaust memory or
// stack while compiling.
const (
	// MaxExpressionLength is the maximum filter expression length (64KB)
	MaxExpressionLength = 64 * 1024

	// MaxTokens is the maximum number of tokens in a filter expression
	MaxTokens = 1000

	// MaxGroupDepth is the maximum parenthesis nesting depth
	MaxGroupDepth = 100
)

var (
	// ErrExpressionTooLong is returned when a filter exceeds MaxExpressionLength
	ErrExpressionTooLong = errors.New("expression too long")

	// ErrTooManyTokens is returned when a filter has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in expression")

	// ErrExpressionTooDeep is returned when group nesting exceeds MaxGroupDepth
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
)

// ValidateExpression checks the raw length of a filter expression.
func ValidateExpression(expr string) error {
	if len(expr) > MaxExpressionLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrExpressionTooLong, len(expr), MaxExpressionLength)
	}
	return nil
}

// ValidateTokens checks token count and parenthesis nesting depth.
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenLeftParen:
			depth++
			if depth > MaxGroupDepth {
				return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, depth, MaxGroupDepth)
			}
		case TokenRightParen:
			depth--
		}
	}
	return nil
}
