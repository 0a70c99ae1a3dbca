package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/models"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the persona command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "persona",
		Short: "Generate Reddit user personas through a running persona server",
		Long: `persona asks a running persona server to analyze a Reddit user and saves
the generated persona next to you as persona_<username>.txt.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("server", DEFAULT_SERVER_URL, "Base URL of the persona server")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [USERNAME]",
		Short: "Analyze a Reddit user and save the persona",
		Long: `Analyze a Reddit user and save the persona JSON to persona_<username>.txt.
Example: persona analyze spez --comprehensive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			comprehensive, _ := cmd.Flags().GetBool("comprehensive")
			exportPath, _ := cmd.Flags().GetString("export")
			outDir, _ := cmd.Flags().GetString("out")
			simulate, _ := cmd.Flags().GetBool("simulate")

			username := clients.NormalizeUsername(args[0])
			if !clients.ValidUsername(username) {
				return fmt.Errorf("invalid username %q", args[0])
			}

			client := NewAPIClient(server)
			fmt.Fprintf(cmd.OutOrStdout(), "Requesting persona for Reddit user: %s\n", username)

			res, err := client.Analyze(cmd.Context(), username, AnalyzeOptions{
				Comprehensive: comprehensive,
				ExportPath:    exportPath,
				SimulatePost:  simulate,
			})
			if err != nil {
				return err
			}

			if data := res.Data.RedditData; data != nil && clients.ValidUsername(data.Username) {
				username = data.Username
			}

			saved, err := SavePersona(outDir, username, res.Data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, RenderPersona(username, res.Data))
			if res.Alert != "" {
				fmt.Fprintln(out, warnStyle.Render(res.Alert))
			}
			for _, path := range saved {
				fmt.Fprintln(out, okStyle.Render("Saved "+path))
			}
			return nil
		},
	}

	cmd.Flags().Bool("comprehensive", true, "Fetch profile, overview and top listings")
	cmd.Flags().String("export", "output", "Directory the server writes its report files to")
	cmd.Flags().String("out", ".", "Directory to save persona_<username>.txt in")
	cmd.Flags().Bool("simulate", false, "Also ask for a simulated post in the user's voice")

	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the persona server's health and configuration flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")

			health, err := NewAPIClient(server).Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), RenderHealth(health))
			return nil
		},
	}
}

// SavePersona writes persona_<username>.txt and, when the server's HTML report
// is readable from here, a copy of it as persona_<username>.html.
func SavePersona(dir, username string, res *models.AnalysisResult) ([]string, error) {
	if !clients.ValidUsername(username) {
		return nil, fmt.Errorf("refusing to save persona for invalid username %q", username)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create %s: %w", dir, err)
	}

	payload, err := json.MarshalIndent(res.Persona, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode persona: %w", err)
	}

	textPath := filepath.Join(dir, "persona_"+username+".txt")
	if err := os.WriteFile(textPath, payload, 0o644); err != nil {
		return nil, fmt.Errorf("could not save persona: %w", err)
	}
	saved := []string{textPath}

	if res.PersonaHTMLFilePath == "" {
		return saved, nil
	}
	html, err := os.ReadFile(res.PersonaHTMLFilePath)
	if err != nil {
		return saved, nil
	}
	htmlPath := filepath.Join(dir, "persona_"+username+".html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return saved, fmt.Errorf("could not save persona html: %w", err)
	}
	return append(saved, htmlPath), nil
}
