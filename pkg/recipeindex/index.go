// Package recipeindex walks registered recipe repository clones and
// indexes the recipes they contain by name, so the resolver can look up
// every version of a given package across every repository.
package recipeindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pygr-project/pygr/pkg/recipe"
)

type cacheEntry struct {
	mtime time.Time
	r     *recipe.Recipe
}

// Index groups parsed recipes by name across every walked repository
// directory. The same name may appear at multiple versions.
type Index struct {
	mu     sync.RWMutex
	byName map[string][]*recipe.Recipe

	cache *lru.Cache[string, cacheEntry]
}

// New creates an Index with an in-process LRU cache of parsed recipe
// documents keyed by (path, mtime), so repeat Load calls within a process
// don't re-parse unchanged files.
func New(cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	c, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("recipeindex: create cache: %w", err)
	}
	return &Index{byName: make(map[string][]*recipe.Recipe), cache: c}, nil
}

// Load walks each directory in repoDirs for *.yaml/*.yml files, parses
// each as a recipe, and (re)builds the by-name grouping. Load may be
// called repeatedly as repos are refreshed; it always starts the grouping
// fresh so deleted recipes stop appearing.
func (idx *Index) Load(repoDirs []string) error {
	grouped := make(map[string][]*recipe.Recipe)

	for _, dir := range repoDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if info.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if !isRecipeFile(path) {
				return nil
			}

			r, err := idx.loadCached(path, info)
			if err != nil {
				return fmt.Errorf("recipeindex: %s: %w", path, err)
			}
			grouped[r.Name] = append(grouped[r.Name], r)
			return nil
		})
		if err != nil {
			return err
		}
	}

	idx.mu.Lock()
	idx.byName = grouped
	idx.mu.Unlock()
	return nil
}

func isRecipeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func (idx *Index) loadCached(path string, info os.FileInfo) (*recipe.Recipe, error) {
	mtime := info.ModTime()

	if entry, ok := idx.cache.Get(path); ok && entry.mtime.Equal(mtime) {
		return entry.r, nil
	}

	r, err := recipe.Load(path)
	if err != nil {
		return nil, err
	}
	idx.cache.Add(path, cacheEntry{mtime: mtime, r: r})
	return r, nil
}

// ByName returns every recipe registered under name, across every
// repository walked by the most recent Load.
func (idx *Index) ByName(name string) []*recipe.Recipe {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.byName[name]
}

// Names returns every distinct recipe name currently indexed.
func (idx *Index) Names() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	names := make([]string, 0, len(idx.byName))
	for n := range idx.byName {
		names = append(names, n)
	}
	return names
}

// Invalidate drops path from the parse cache, forcing the next Load to
// re-parse it.
func (idx *Index) Invalidate(path string) {
	idx.cache.Remove(path)
}
