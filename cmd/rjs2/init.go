package main

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rjavier441/rjs2"
	"github.com/rjavier441/rjs2/keybackend"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new site",
	Long: `Create config.yaml, a content root with a sample page and directory
config, and a CSRF key file in dir (default: the current directory).

You will be prompted for:
  - Listen port
  - Whether to serve plain HTTP
  - Content root
  - Server name and contact email

Use --yes to accept the defaults without prompting.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initYes   bool
	initForce bool
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config.yaml")

	rootCmd.AddCommand(initCmd)
}

// initAnswers are the values asked for by init.
type initAnswers struct {
	Port        int
	Insecure    bool
	ContentRoot string
	ServerName  string
	ServerEmail string
}

func defaultAnswers() initAnswers {
	return initAnswers{
		Port:        8080,
		Insecure:    true,
		ContentRoot: "public",
		ServerName:  "rjserver2",
	}
}

// scaffoldConfig is the config.yaml written by init.
type scaffoldConfig struct {
	Env    string `yaml:"env"`
	Server struct {
		Port     int  `yaml:"port"`
		Insecure bool `yaml:"insecure"`
	} `yaml:"server"`
	Content struct {
		Root       string `yaml:"root"`
		ConfigFile string `yaml:"config_file"`
	} `yaml:"content"`
	Meta struct {
		ServerName  string `yaml:"server_name"`
		ServerEmail string `yaml:"server_email,omitempty"`
	} `yaml:"meta"`
	CSRF struct {
		KeyFile string `yaml:"key_file"`
	} `yaml:"csrf"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

const (
	scaffoldConfigName = "config.yaml"
	scaffoldKeyName    = "csrf.key"
)

const sampleIndex = `<!DOCTYPE html>
<html>
<head><title>{{.title}}</title></head>
<body>
  <h1>{{.title}}</h1>
  <form method="POST">
    {{.csrfField}}
    <button type="submit">Send</button>
  </form>
</body>
</html>
`

const sampleDirectoryConfig = `{
  "exclude": { "drafts": true },
  "mountConfig": {
    "index.html": {
      "pre": ["csrfProtection", "ejsLoadCsrfToken"],
      "req": ["ejsRenderAndSendTemplate", "terminate"]
    }
  }
}
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	configPath := filepath.Join(dir, scaffoldConfigName)
	if _, err := os.Stat(configPath); err == nil && !initForce {
		if initYes {
			return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
		}
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", configPath),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	answers := defaultAnswers()
	if !initYes {
		var err error
		answers, err = promptAnswers(answers)
		if err != nil {
			return handlePromptError(err)
		}
	}

	created, err := scaffold(dir, answers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, path := range created {
		fmt.Fprintf(out, "Created: %s\n", path)
	}
	fmt.Fprintf(out, "\nRun 'rjs2 serve' from %s to start the server.\n", dir)
	return nil
}

func promptAnswers(a initAnswers) (initAnswers, error) {
	portPrompt := promptui.Prompt{
		Label:   "Listen port",
		Default: strconv.Itoa(a.Port),
		Validate: func(input string) error {
			port, err := strconv.Atoi(input)
			if err != nil || port < 1 || port > 65535 {
				return errors.New("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return a, err
	}
	a.Port, _ = strconv.Atoi(portStr)

	insecurePrompt := promptui.Select{
		Label: "Protocol",
		Items: []string{"http (no TLS)", "https (needs a certificate)"},
	}
	idx, _, err := insecurePrompt.Run()
	if err != nil {
		return a, err
	}
	a.Insecure = idx == 0

	rootPrompt := promptui.Prompt{
		Label:   "Content root",
		Default: a.ContentRoot,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("content root is required")
			}
			return nil
		},
	}
	if a.ContentRoot, err = rootPrompt.Run(); err != nil {
		return a, err
	}

	namePrompt := promptui.Prompt{
		Label:   "Server name",
		Default: a.ServerName,
	}
	if a.ServerName, err = namePrompt.Run(); err != nil {
		return a, err
	}

	emailPrompt := promptui.Prompt{
		Label: "Contact email (optional)",
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			_, err := mail.ParseAddress(input)
			return err
		},
	}
	if a.ServerEmail, err = emailPrompt.Run(); err != nil {
		return a, err
	}

	return a, nil
}

// scaffold writes the site skeleton into dir and returns the paths it
// created. Existing content files and key files are left alone; config.yaml
// is always written.
func scaffold(dir string, a initAnswers) ([]string, error) {
	var created []string

	contentDir := filepath.Join(dir, a.ContentRoot)
	if err := os.MkdirAll(contentDir, 0o750); err != nil {
		return nil, fmt.Errorf("create content root: %w", err)
	}

	var cfg scaffoldConfig
	cfg.Env = "dev"
	cfg.Server.Port = a.Port
	cfg.Server.Insecure = a.Insecure
	cfg.Content.Root = a.ContentRoot
	cfg.Content.ConfigFile = rjs2.DefaultConfigFileName
	cfg.Meta.ServerName = a.ServerName
	cfg.Meta.ServerEmail = a.ServerEmail
	cfg.CSRF.KeyFile = scaffoldKeyName
	cfg.Log.Level = "info"

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	configPath := filepath.Join(dir, scaffoldConfigName)
	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // config is not secret
		return nil, fmt.Errorf("write config: %w", err)
	}
	created = append(created, configPath)

	keyPath := filepath.Join(dir, scaffoldKeyName)
	if _, err := os.Stat(keyPath); errors.Is(err, os.ErrNotExist) {
		key, err := keybackend.GenerateKey()
		if err != nil {
			return nil, err
		}
		if err := keybackend.WriteKeyFile(keyPath, key); err != nil {
			return nil, err
		}
		created = append(created, keyPath)
	}

	samples := []struct {
		name string
		data []byte
	}{
		{"index.html", []byte(sampleIndex)},
		{rjs2.DefaultConfigFileName, []byte(sampleDirectoryConfig)},
	}
	for _, s := range samples {
		path := filepath.Join(contentDir, s.name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, s.data, 0o644); err != nil { //nolint:gosec // served content
			return nil, fmt.Errorf("write %s: %w", s.name, err)
		}
		created = append(created, path)
	}

	return created, nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
