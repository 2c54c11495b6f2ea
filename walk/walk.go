// Package walk reads a directory tree with many goroutines at once and hands the
// directories to a single visit function, by default in the same order as a
// sequential walk would.
//
// Each directory is read by whichever worker reaches it first. A worker that
// finds subdirectories hands them to idle workers and walks the rest itself, so
// deep and wide trees keep all workers busy. The results travel through a
// [resultsqueue] queue, which restores the sequential order for Sorted walks.
package walk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/treewalk/resultsqueue"
	"github.com/notorious-go/treewalk/treepath"
)

// Dir is the result of reading one directory.
type Dir struct {
	// Path is the slash-separated name of the directory in the walked file system,
	// as accepted by fs.ReadDir.
	Path string

	// Position identifies the directory in the tree of directories: the root is 0,
	// its first subdirectory 0.0, and so on.
	Position treepath.Path

	// Depth is the number of directories between the root and this one. The root
	// has depth 0.
	Depth int

	// Entries are the directory's entries, sorted by name, without hidden ones
	// unless the walk includes them.
	Entries []fs.DirEntry

	// Err is set if the directory could not be read. Its subdirectories are not
	// walked then.
	Err error
}

// VisitFunc is called for every directory of a walk, one at a time. Returning
// fs.SkipAll stops the walk without error; any other error stops the walk and is
// returned by Walk.
type VisitFunc func(Dir) error

// Walk reads the tree rooted at root in fsys using the workers and order of cfg
// and calls visit for every directory, including the root.
//
// Unreadable directories are visited with Dir.Err set. Walk returns the error of
// visit, ctx's error if ctx is done first, or an error describing a walk that
// could not be completed.
func Walk(ctx context.Context, fsys fs.FS, root string, cfg Config, visit VisitFunc) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w := &walker{fsys: fsys, cfg: cfg, log: cfg.logger()}
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	w.log.Info("walk started", "root", root, "order", cfg.order(), "workers", cfg.workers())

	q, rx := w.open()
	g, gctx := errgroup.WithContext(wctx)
	g.SetLimit(cfg.workers())
	g.Go(func() error {
		defer q.Close()
		return w.walkDir(gctx, g, q, root, treepath.Path{0})
	})

	visited, err := w.consume(wctx, rx, visit)
	// Producers still walking get ErrClosed from now on and stop.
	rx.Close()
	if err != nil {
		cancel()
		_ = g.Wait()
		if errors.Is(err, fs.SkipAll) {
			w.log.Info("walk stopped", "root", root, "dirs", visited, "elapsed", time.Since(start))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The queue reports workers that gave up on a cancelled walk as an
			// incomplete traversal, which hides the actual cause.
			err = ctxErr
		}
		w.log.Warn("walk failed", "root", root, "dirs", visited, "error", err)
		return err
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.log.Info("walk finished", "root", root, "dirs", visited, "elapsed", time.Since(start))
	return nil
}

// receiver is the consuming end of either kind of results queue.
type receiver interface {
	NextContext(ctx context.Context) (resultsqueue.Entry[Dir], error)
	Close()
}

type walker struct {
	fsys fs.FS
	cfg  Config
	log  *slog.Logger
}

func (w *walker) open() (*resultsqueue.Queue[Dir], receiver) {
	if w.cfg.order() == Arrival {
		return resultsqueue.New[Dir]()
	}
	// A walk has exactly one root, so the queue can tell when it is over without
	// waiting for the workers to wind down.
	return resultsqueue.NewSorted[Dir](resultsqueue.WithRoots(1))
}

func (w *walker) consume(ctx context.Context, rx receiver, visit VisitFunc) (visited int, err error) {
	for {
		e, err := rx.NextContext(ctx)
		if errors.Is(err, io.EOF) {
			return visited, nil
		}
		if err != nil {
			return visited, err
		}
		visited++
		if err := visit(e.Payload); err != nil {
			return visited, err
		}
	}
}

// walkDir reads the directory name, pushes it, and walks its subdirectories. Each
// subdirectory is handed to a new worker if one is available, and walked by the
// current worker otherwise.
func (w *walker) walkDir(ctx context.Context, g *errgroup.Group, q *resultsqueue.Queue[Dir], name string, pos treepath.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d := w.read(name, pos)
	subdirs := w.subdirs(d)
	err := q.Push(resultsqueue.Entry[Dir]{
		Position:    pos,
		BranchCount: len(subdirs),
		Payload:     d,
	})
	if errors.Is(err, resultsqueue.ErrClosed) {
		// Nobody is listening anymore.
		return nil
	}
	if err != nil {
		return err
	}

	for i, sub := range subdirs {
		child, childPos := path.Join(name, sub), pos.Child(i)
		handle := q.Clone()
		spawned := g.TryGo(func() error {
			defer handle.Close()
			return w.walkDir(ctx, g, handle, child, childPos)
		})
		if spawned {
			continue
		}
		handle.Close()
		if err := w.walkDir(ctx, g, q, child, childPos); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) read(name string, pos treepath.Path) Dir {
	d := Dir{Path: name, Position: pos, Depth: pos.Depth()}
	entries, err := fs.ReadDir(w.fsys, name)
	if err != nil {
		w.log.Warn("cannot read directory", "path", name, "error", err)
		d.Err = fmt.Errorf("walk: read dir %q: %w", name, err)
		return d
	}
	if !w.cfg.Hidden {
		entries = visible(entries)
	}
	d.Entries = entries
	w.log.Debug("read directory", "path", name, "position", pos.String(), "entries", len(entries))
	return d
}

// subdirs returns the names of the subdirectories of d that the walk descends
// into. Exactly these push an entry of their own, so their number is the branch
// count of d.
func (w *walker) subdirs(d Dir) []string {
	if d.Err != nil {
		return nil
	}
	if w.cfg.MaxDepth > 0 && d.Depth >= w.cfg.MaxDepth {
		return nil
	}
	var names []string
	for _, e := range d.Entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func visible(entries []fs.DirEntry) []fs.DirEntry {
	kept := entries[:0]
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), ".") {
			kept = append(kept, e)
		}
	}
	return kept
}
