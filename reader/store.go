package reader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vegasq/tablequery/internal/logging"
)

// tablePattern matches every file extension ReadFile understands.
const tablePattern = "*.{csv,xlsx,json,parquet}"

// DirStore serves tables from files in a single directory. A table's name is
// its file name without extension; its ID is its 1-based position in the
// sorted listing.
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

// List returns the tables in the directory, sorted by file name.
func (d *DirStore) List() ([]TableInfo, error) {
	matches, err := doublestar.Glob(os.DirFS(d.root), tablePattern)
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}
	sort.Strings(matches)

	infos := make([]TableInfo, 0, len(matches))
	for i, m := range matches {
		infos = append(infos, TableInfo{
			ID:    int64(i + 1),
			Title: titleFromPath(m),
			Path:  filepath.Join(d.root, m),
		})
	}
	return infos, nil
}

// TableByName loads the table whose title matches name exactly.
func (d *DirStore) TableByName(ctx context.Context, name string) (*Table, error) {
	infos, err := d.List()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Title == name {
			return d.load(ctx, info)
		}
	}
	logging.Warn("table not found", "store", "dir", "root", d.root, "table", name)
	return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
}

// TableByID loads the table at the given position.
func (d *DirStore) TableByID(ctx context.Context, id int64) (*Table, error) {
	infos, err := d.List()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.ID == id {
			return d.load(ctx, info)
		}
	}
	logging.Warn("table not found", "store", "dir", "root", d.root, "id", id)
	return nil, fmt.Errorf("%w: id %d", ErrTableNotFound, id)
}

func (d *DirStore) load(ctx context.Context, info TableInfo) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ReadFile(info.Path)
	if err != nil {
		return nil, err
	}
	t.ID = info.ID
	logging.TableLoad("dir", t.Title, len(t.Rows))
	return t, nil
}
