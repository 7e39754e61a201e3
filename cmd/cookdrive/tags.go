package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cooklabs/cookdrive/internal/config"
	"github.com/cooklabs/cookdrive/internal/cooklang"
	"github.com/cooklabs/cookdrive/internal/llm"
	"github.com/cooklabs/cookdrive/internal/tagindex"
)

const popularTagLimit = 8

func init() {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Maintain recipe tags",
	}
	tagsCmd.AddCommand(newTagsIndexCmd(), newTagsSuggestCmd())
	rootCmd.AddCommand(tagsCmd)
}

func newTagsIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Regenerate the tag index from recipe front matter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			idx, err := tagindex.Build(os.DirFS(cfg.RepoDir))
			if err != nil {
				return err
			}

			out := filepath.Join(cfg.RepoDir, config.DefaultTagIndexFile)
			if err := os.WriteFile(out, idx.Render(time.Now()), 0o644); err != nil {
				return err
			}

			fmt.Printf("%s %s (%d recipes)\n", green("Wrote"), out, idx.Recipes)
			return nil
		},
	}
}

func newTagsSuggestCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "suggest <recipe.cook>",
		Short: "Suggest tags for a recipe using the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.OpenAIKey == "" {
				return errors.New("OPENAI_API_KEY is not set")
			}

			recipePath := args[0]
			data, err := os.ReadFile(recipePath)
			if err != nil {
				return err
			}

			idx, err := tagindex.Build(os.DirFS(cfg.RepoDir))
			if err != nil {
				return err
			}

			client := llm.New(cfg.OpenAIKey)
			suggested, err := client.SuggestTags(cmd.Context(), string(data), idx.Summary(popularTagLimit))
			if err != nil {
				return err
			}

			normalized := make([]string, 0, len(suggested))
			for _, tag := range suggested {
				if tag = cooklang.NormalizeTag(tag); tag != "" {
					normalized = append(normalized, tag)
				}
			}

			for _, tag := range normalized {
				fmt.Println(tag)
			}

			if apply {
				updated, err := cooklang.WithTags(string(data), normalized)
				if err != nil {
					return err
				}
				if err := os.WriteFile(recipePath, []byte(updated), 0o644); err != nil {
					return err
				}
				fmt.Printf("%s %s\n", green("Updated"), recipePath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Write the suggested tags into the recipe front matter")
	return cmd
}
