package cmd

import (
	"fmt"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hoststack/concierge/internal/ingest"
)

var (
	ingestProperty string
	ingestClear    bool
	ingestInclude  string
	ingestExclude  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index property knowledge documents",
	Long: `Reads the property knowledge files under the configured data directory,
chunks and embeds them, and writes the vectors to the local index. Each
subdirectory is treated as one property.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestProperty, "property", "p", "", "only ingest this property id")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "remove each property's existing vectors before indexing")
	ingestCmd.Flags().StringVar(&ingestInclude, "include", "**/*.txt", "glob of files to include")
	ingestCmd.Flags().StringVar(&ingestExclude, "exclude", "", "glob of files to exclude")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("building embedder: %w", err)
	}
	store := newStore(cfg, embedder)

	docs, err := ingest.LoadDir(cfg.PropertyDataDir, ingestInclude, ingestExclude)
	if err != nil {
		return fmt.Errorf("loading documents from %s: %w", cfg.PropertyDataDir, err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found under %s", cfg.PropertyDataDir)
	}

	byProperty := make(map[string][]ingest.Document)
	for _, doc := range docs {
		if ingestProperty != "" && doc.PropertyID != ingest.SanitizePropertyID(ingestProperty) {
			continue
		}
		byProperty[doc.PropertyID] = append(byProperty[doc.PropertyID], doc)
	}
	if len(byProperty) == 0 {
		return fmt.Errorf("no documents matched property %q", ingestProperty)
	}

	ids := make([]string, 0, len(byProperty))
	for id := range byProperty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pipeline := ingest.NewPipeline(embedder, store, cfg.ChunkSize, cfg.ChunkOverlap, logger)

	for _, id := range ids {
		fmt.Printf("Indexing %s (%d files)\n", id, len(byProperty[id]))

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(id),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		pipeline.Progress = func(done, total int) {
			bar.ChangeMax(total)
			bar.Set(done)
		}

		summary, err := pipeline.Ingest(cmd.Context(), id, byProperty[id], ingestClear)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", id, err)
		}
		bar.Finish()

		fmt.Printf("  %d chunks, %d vectors written", summary.ChunksProcessed, summary.VectorsUpserted)
		if summary.Skipped > 0 {
			fmt.Printf(", %d skipped", summary.Skipped)
		}
		fmt.Println()
	}

	if err := store.Persist(cmd.Context()); err != nil {
		logger.Warn("persisting index failed", zap.Error(err))
		return fmt.Errorf("persisting index: %w", err)
	}

	fmt.Println("Done.")
	return nil
}
