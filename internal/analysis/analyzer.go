// Package analysis runs the multi-stage datasheet pipeline: rasterize the
// source file, call the completion service for vendor code, report, tags and
// checklist, persist the record, and synthesize verification code per
// checklist item.
package analysis

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sheetwatch/internal/config"
	"sheetwatch/internal/extract"
	"sheetwatch/internal/logging"
	"sheetwatch/internal/rasterize"
	"sheetwatch/internal/services"
	"sheetwatch/internal/store"
)

// Completer issues one chat completion. Images are optional data URLs.
type Completer interface {
	Complete(ctx context.Context, prompt string, images []string) (string, error)
}

// CodeGenerator synthesizes Python code for one checklist requirement.
type CodeGenerator interface {
	Generate(ctx context.Context, vendorCode, requirement string) (string, error)
}

// Analyzer orchestrates one full analysis run per datasheet file.
type Analyzer struct {
	cfg       *config.Config
	store     *store.Store
	completer Completer
	codegen   CodeGenerator
	logger    *slog.Logger

	// rasterizeFn is swappable in tests to avoid depending on MuPDF.
	rasterizeFn func(ctx context.Context, path string, opts rasterize.Options) ([]string, error)
}

// New builds an analyzer over the shared store and completion client.
func New(cfg *config.Config, st *store.Store, completer Completer, gen CodeGenerator, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{
		cfg:         cfg,
		store:       st,
		completer:   completer,
		codegen:     gen,
		logger:      logging.NewComponentLogger(logger, "analysis"),
		rasterizeFn: rasterize.DataURLs,
	}
}

// WithRasterizer overrides page rendering (for testing).
func (a *Analyzer) WithRasterizer(fn func(ctx context.Context, path string, opts rasterize.Options) ([]string, error)) {
	a.rasterizeFn = fn
}

// Run analyzes one file end to end. A duplicate record for the same file
// content is not an error: the run is abandoned quietly and nil is returned
// so the caller can mark the file finished. Any other stage failure aborts
// the run and is returned for the caller to revert the file to Ready.
func (a *Analyzer) Run(ctx context.Context, path string) error {
	filename := filepath.Base(path)
	ctx = services.WithFilename(ctx, filename)
	log := a.logger.With(logging.String(logging.FieldFilename, filename))

	images, err := a.rasterizeFn(ctx, path, rasterize.Options{
		MaxPages: a.cfg.Analyzer.MaxPages,
		DPI:      a.cfg.Analyzer.RenderDPI,
	})
	if err != nil {
		return err
	}
	log.Info("rendered pages", logging.Int("pages", len(images)))

	vendorReply, err := a.completer.Complete(services.WithStage(ctx, "vendor"), vendorPrompt, images)
	if err != nil {
		return err
	}
	vendorCode := strings.TrimSpace(vendorReply)
	log.Info("vendor code extracted", logging.String(logging.FieldVendorCode, vendorCode))

	analysisText, err := a.completer.Complete(services.WithStage(ctx, "analyze"), analysisPrompt, images)
	if err != nil {
		return err
	}

	tagReply, err := a.completer.Complete(services.WithStage(ctx, "tags"), withAnalysisContext(analysisText, tagPrompt), nil)
	if err != nil {
		return err
	}
	tags := extract.Tags(tagReply)
	metadata := make(map[string]any, len(tags.Tags)+1)
	for name, description := range tags.Tags {
		metadata[name] = description
	}
	if tags.Raw != "" {
		metadata[extract.RawTagsKey] = tags.Raw
		log.Warn("tag reply not decodable, keeping raw text")
	}

	fileHash, err := hashFile(path)
	if err != nil {
		return services.Wrap(services.ErrStore, "analysis", "hash", "failed to hash source file", err)
	}

	recordID, err := a.store.InsertAnalysis(ctx, filename, analysisText, vendorCode, fileHash, metadata)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAnalysis) {
			log.Info("identical content already analyzed, abandoning run",
				logging.String("file_hash", fileHash))
			return nil
		}
		return err
	}
	log.Info("analysis persisted",
		logging.Int64("analysis_id", recordID),
		logging.Int("tags", len(tags.Tags)))

	checklistReply, err := a.completer.Complete(services.WithStage(ctx, "checklist"), withAnalysisContext(analysisText, checklistPrompt), nil)
	if err != nil {
		return err
	}
	items := extract.Checklist(checklistReply)
	if len(items) == 0 {
		log.Info("no checklist items generated")
		return nil
	}

	// Code synthesis writes a fixed output file, so items run sequentially.
	persisted := 0
	for _, item := range items {
		code := ""
		if a.codegen != nil {
			generated, genErr := a.codegen.Generate(services.WithStage(ctx, "codegen"), vendorCode, item)
			if genErr != nil {
				log.Warn("code synthesis failed, persisting item without code",
					logging.String("requirement", item),
					logging.Error(genErr))
			} else {
				code = generated
			}
		}
		if _, err := a.store.InsertChecklistItem(ctx, recordID, item, code); err != nil {
			log.Warn("checklist item insert failed, skipping item",
				logging.String("requirement", item),
				logging.Error(err))
			continue
		}
		persisted++
	}
	log.Info("checklist persisted",
		logging.Int("items", persisted),
		logging.Int("generated", len(items)))
	return nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}
