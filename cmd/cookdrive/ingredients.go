package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cooklabs/cookdrive/internal/aisle"
	"github.com/cooklabs/cookdrive/internal/config"
	"github.com/cooklabs/cookdrive/internal/cooklang"
	"github.com/cooklabs/cookdrive/internal/llm"
)

func init() {
	ingredientsCmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Maintain the shopping-aisle config",
	}
	ingredientsCmd.AddCommand(newIngredientsNormalizeCmd())
	rootCmd.AddCommand(ingredientsCmd)
}

func newIngredientsNormalizeCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "normalize <recipe.cook>",
		Short: "Map a recipe's ingredients onto aisle.conf, adding synonyms and new items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.OpenAIKey == "" {
				return errors.New("OPENAI_API_KEY is not set")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, body := cooklang.SplitFrontMatter(string(data))
			ingredients := cooklang.Ingredients(body)

			aislePath := filepath.Join(cfg.RepoDir, config.DefaultAisleConf)
			f, err := os.Open(aislePath)
			if err != nil {
				return err
			}
			conf, err := aisle.Parse(f)
			f.Close()
			if err != nil {
				return err
			}

			var unknown []string
			for _, ing := range ingredients {
				if !conf.Knows(ing) {
					unknown = append(unknown, ing)
				}
			}
			if len(unknown) == 0 {
				fmt.Println("All ingredients already known.")
				return nil
			}

			client := llm.New(cfg.OpenAIKey)
			result, err := client.NormalizeIngredients(cmd.Context(), conf.KnownNames(), conf.CategoryNames(), unknown)
			if err != nil {
				return err
			}

			for synonym, canonical := range result.Synonyms {
				if err := conf.AddSynonym(canonical, synonym); err != nil {
					fmt.Printf("skipping synonym %q -> %q: %v\n", synonym, canonical, err)
					continue
				}
				fmt.Printf("synonym: %s -> %s\n", synonym, canonical)
			}
			for _, item := range result.NewItems {
				conf.AddItem(item.Category, item.Name)
				fmt.Printf("new item: %s [%s]\n", item.Name, item.Category)
			}

			if write {
				out, err := os.Create(aislePath)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := conf.Render(out); err != nil {
					return err
				}
				fmt.Printf("%s %s\n", green("Updated"), aislePath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write the updated aisle.conf back to disk")
	return cmd
}
