package cmd

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dendrascience/amshared/stage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand.
// It fills a stage with randomized records for testing.
func NewSeedCmd() *cobra.Command {
	var (
		rubric string
		count  int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a stage with randomized test records",
		Long: `Generate randomized records for testing.

Records are spread over sub-rubrics of RUBRIC. About a third are atomic,
a third are parts of a handful of multipart names and the rest go to the
heap. Each record holds a UUID drawn from a small pool.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := openStage()
			if err != nil {
				return err
			}
			saved, failed := runSeed(stg, rubric, count)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d records (%d failed)\n", saved, failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&rubric, "rubric", "seed", "Rubric to fill")
	cmd.Flags().IntVarP(&count, "count", "c", 100, "Number of records to generate")

	return cmd
}

func randInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// seedDataflow builds count random [metadata, content] pairs.
func seedDataflow(rubric string, count int) []any {
	uuidPool := make([]string, 50)
	for i := range uuidPool {
		uuidPool[i] = uuid.New().String()
	}
	formats := []string{"json", "txt", "yaml", "gob"}

	flow := make([]any, 0, count)
	for range count {
		meta := map[string]any{
			stage.KeyRubric: fmt.Sprintf("%s/%02d", rubric, randInt(10)),
			stage.KeyFormat: formats[randInt(int64(len(formats)))],
		}
		content := uuidPool[randInt(int64(len(uuidPool)))]

		switch randInt(3) {
		case 0:
			meta[stage.KeyName] = fmt.Sprintf("%08x", randInt(0xFFFFFFFF))
		case 1:
			meta[stage.KeyName] = fmt.Sprintf("series-%d", randInt(5))
			meta[stage.KeyPart] = true
		}
		flow = append(flow, [2]any{meta, content})
	}
	return flow
}

func runSeed(stg *stage.Stage, rubric string, count int) (saved, failed int) {
	for rec := range stg.GSave(seedDataflow(rubric, count)) {
		if rec.Failed() || rec.Empty() {
			failed++
			continue
		}
		saved++
	}
	return saved, failed
}
