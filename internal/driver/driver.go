// Package driver checks scenario files: each file is one translation unit
// replayed through a fresh checker. Units are independent, so directory
// checks fan out over an errgroup, with an optional msgpack disk cache of
// per-unit results keyed by content and configuration.
package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"chisel/internal/config"
	"chisel/internal/diag"
	"chisel/internal/source"
)

// UnitResult is the outcome of checking one scenario file.
type UnitResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Cached is set when the bag was rebuilt from the disk cache.
	Cached bool
}

// ExpandPaths resolves the CLI's path arguments: directories expand to
// every *.toml below them (chisel.toml excluded), files pass through. The
// result is sorted for deterministic unit order.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".toml") {
				return nil
			}
			if filepath.Base(path) == "chisel.toml" {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// CheckPaths loads and checks every scenario file, fanning units out over
// jobs workers (0 = GOMAXPROCS). Files are preloaded sequentially so the
// FileSet stays free of locks; load failures become IOLoadFileError
// diagnostics in the failing unit's bag rather than aborting the batch.
func CheckPaths(ctx context.Context, paths []string, cfg *config.Config, jobs int, cache *DiskCache) (*source.FileSet, []UnitResult, error) {
	fileSet := source.NewFileSet()
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	fingerprint := configFingerprint(cfg)
	maxDiagnostics := cfg.Options().MaxDiagnostics

	// Each goroutine writes only its own index; no mutex needed.
	results := make([]UnitResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadError := loadErrors[path]; hadError {
				bag := diag.NewBag(maxDiagnostics)
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
					Primary:  source.Span{},
				})
				results[i] = UnitResult{Path: path, Bag: bag}
				return nil
			}

			fileID := fileIDs[path]
			file := fileSet.Get(fileID)

			if cache != nil {
				key := unitKey(file.Hash, fingerprint)
				var cached cachedUnit
				if hit, err := cache.Get(key, &cached); err == nil && hit {
					results[i] = UnitResult{
						Path:   path,
						FileID: fileID,
						Bag:    fromCachedUnit(&cached, fileID, maxDiagnostics),
						Cached: true,
					}
					return nil
				}
			}

			bag := RunUnit(fileSet, fileID, cfg)
			if cache != nil {
				// Best-effort; a full disk never fails the check.
				_ = cache.Put(unitKey(file.Hash, fingerprint), toCachedUnit(bag))
			}
			results[i] = UnitResult{Path: path, FileID: fileID, Bag: bag}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// configFingerprint folds every check-relevant configuration knob into a
// canonical string, so a config change misses the cache.
func configFingerprint(cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("triple=" + cfg.Target.Triple)
	b.WriteString(";aux=" + cfg.Target.Aux)
	features := append([]string(nil), cfg.Target.Features...)
	sort.Strings(features)
	b.WriteString(";features=" + strings.Join(features, ","))
	b.WriteString(";mode=" + strings.ToLower(cfg.Language.Mode))
	if cfg.Language.FastestVaryingFirst {
		b.WriteString(";fvf")
	}
	disabled := append([]string(nil), cfg.Checks.Disabled...)
	sort.Strings(disabled)
	b.WriteString(";disabled=" + strings.Join(disabled, ","))
	return b.String()
}
