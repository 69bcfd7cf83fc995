package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

var (
	// Generate command flags
	inputPath    string
	outputPath   string
	providerID   string
	guidance     string
	includeNotes bool
	templatePath string
)

// frontmatter carries per-document generation options embedded at the top
// of the input file between --- markers.
type frontmatter struct {
	Provider string `yaml:"provider"`
	Guidance string `yaml:"guidance"`
	Notes    bool   `yaml:"notes"`
}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pptx deck from a text file",
	Long: `Compile a plain-text file into a PowerPoint deck. The provider
API key is read from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY
or GROQ_API_KEY depending on --provider). The input file may carry YAML
frontmatter setting provider, guidance and notes.

Example:
  deckgen generate -i notes.txt -o deck.pptx --provider openai
  deckgen generate -i notes.txt -o deck.pptx --provider groq --template corp.pptx`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input text file (required)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output pptx path (default: derived from report id)")
	generateCmd.Flags().StringVar(&providerID, "provider", "", "LLM provider: openai, anthropic or groq")
	generateCmd.Flags().StringVar(&guidance, "guidance", "", "Styling guidance passed to the provider")
	generateCmd.Flags().BoolVar(&includeNotes, "notes", false, "Ask the provider for speaker notes")
	generateCmd.Flags().StringVar(&templatePath, "template", "", "Template pptx to style the deck after")
	_ = generateCmd.MarkFlagRequired("input")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	finalConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	text, fm, err := readInput(inputPath)
	if err != nil {
		return err
	}

	// Flags beat frontmatter
	provider := providerID
	if provider == "" {
		provider = fm.Provider
	}
	if provider == "" {
		return fmt.Errorf("no provider given: use --provider or frontmatter")
	}
	if guidance == "" {
		guidance = fm.Guidance
	}
	notes := includeNotes || fm.Notes

	credential, err := credentialFromEnv(entities.Provider(provider))
	if err != nil {
		return err
	}

	var templateData []byte
	if templatePath != "" {
		templateData, err = os.ReadFile(templatePath) // #nosec G304 - user-supplied path by design
		if err != nil {
			return fmt.Errorf("reading template file: %w", err)
		}
	}

	compiler := buildCompiler(finalConfig)
	result, err := compiler.Compile(cmd.Context(), ports.CompileRequest{
		Text:         text,
		Provider:     entities.Provider(provider),
		Credential:   credential,
		Guidance:     guidance,
		Template:     templateData,
		IncludeNotes: notes,
	})
	if err != nil {
		return fmt.Errorf("generating deck: %w", err)
	}

	out := outputPath
	if out == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, result.Document, 0600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	report := result.Report
	fmt.Printf("Wrote %s (%d slides, provider %s, %d attempt(s))\n",
		out, report.SlideCount, report.Provider, report.Attempts)
	if report.Repaired() {
		fmt.Printf("Outline needed repair: %s\n", strings.Join(report.RepairHeuristics, ", "))
	}
	if len(report.LayoutFallbacks) > 0 {
		fmt.Printf("Layout fallbacks: %d slide(s) used a generic layout\n", len(report.LayoutFallbacks))
	}

	return nil
}

// readInput loads the input file and splits optional YAML frontmatter from
// the body.
func readInput(path string) (string, frontmatter, error) {
	var fm frontmatter

	info, err := os.Stat(path)
	if err != nil {
		return "", fm, fmt.Errorf("accessing input file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fm, fmt.Errorf("input path is not a regular file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path validated above
	if err != nil {
		return "", fm, fmt.Errorf("reading input file: %w", err)
	}

	text := string(data)
	if strings.HasPrefix(text, "---\n") {
		rest := text[4:]
		if idx := strings.Index(rest, "\n---"); idx >= 0 {
			if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil {
				return "", fm, fmt.Errorf("parsing frontmatter: %w", err)
			}
			text = strings.TrimPrefix(rest[idx+4:], "\n")
		}
	}

	return text, fm, nil
}

// credentialFromEnv resolves the API key for a provider. DECKGEN_API_KEY
// overrides the per-provider variables.
func credentialFromEnv(p entities.Provider) (string, error) {
	if key := os.Getenv("DECKGEN_API_KEY"); key != "" {
		return key, nil
	}

	envVar := map[entities.Provider]string{
		entities.ProviderOpenAI:    "OPENAI_API_KEY",
		entities.ProviderAnthropic: "ANTHROPIC_API_KEY",
		entities.ProviderGroq:      "GROQ_API_KEY",
	}[p]
	if envVar == "" {
		return "", fmt.Errorf("unsupported provider: %s", p)
	}

	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("no API key found: set %s or DECKGEN_API_KEY", envVar)
	}
	return key, nil
}
