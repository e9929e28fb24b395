package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/pwds-expect/pkg/config"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath string
		executable string
		safeFile   string
		secret     string
		prompts    []string
		scriptPath string
		timeout    time.Duration
		verbose    bool
		debug      bool
		help       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&executable, "exe", "", "Program to run (default from config, then \"pwds\")")
	flag.StringVar(&safeFile, "file", "", "Safe file passed as --file")
	flag.StringVar(&secret, "secret", "", "Secret sent at password prompts (default $PWDS_SECRET)")
	flag.StringArrayVar(&prompts, "prompt", nil, "Password prompt pattern, repeatable, answered in order")
	flag.StringVar(&scriptPath, "script", "", "YAML script with further prompts and inputs")
	flag.DurationVar(&timeout, "timeout", 0, "Time to wait for each prompt (default from config)")
	flag.BoolVarP(&verbose, "verbose", "v", false, "Print live output and step outcomes to stderr")
	flag.BoolVar(&debug, "debug", false, "Print driver diagnostics to stderr")
	flag.BoolVarP(&help, "help", "h", false, "Show help message")

	// Everything from the first command token on belongs to the program
	flag.CommandLine.SetInterspersed(false)
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	if configPath != "" {
		if err := os.Setenv("PWDS_EXPECT_CONFIG", configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}
	if debug {
		if err := os.Setenv("PWDS_EXPECT_DEBUG", "true"); err != nil {
			fmt.Fprintf(os.Stderr, "Error enabling debug output: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if executable != "" {
		cfg.Executable = executable
	}
	if timeout != 0 {
		cfg.PromptTimeout = timeout
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error in options: %v\n", err)
		os.Exit(1)
	}

	if secret == "" {
		secret, err = readSecret()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading secret: %v\n", err)
			os.Exit(1)
		}
	}

	app := NewApplication(cfg, os.Stdout, os.Stderr)
	res, err := app.Run(Options{
		SafeFile:        safeFile,
		Command:         flag.Args(),
		Secret:          secret,
		PasswordPrompts: prompts,
		ScriptPath:      scriptPath,
		Verbose:         verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running %s: %v\n", cfg.Executable, err)
		os.Exit(1)
	}

	// Exit with the same code as the program under test
	os.Exit(exitCode(res))
}

// readSecret takes the secret from PWDS_SECRET, or from the first line of
// stdin when stdin is not a terminal
func readSecret() (string, error) {
	if s, ok := os.LookupEnv("PWDS_SECRET"); ok {
		return s, nil
	}
	if isatty(os.Stdin.Fd()) {
		return "", nil
	}

	return readFirstLine(os.Stdin)
}

// readFirstLine returns the first line of r without its line ending. An
// empty input is an empty secret.
func readFirstLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printUsage() {
	fmt.Println("pwds-expect - drive the pwds password safe through a pseudo-terminal")
	fmt.Println()
	fmt.Println("Usage: pwds-expect [OPTIONS] [COMMAND...]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  pwds-expect --file /tmp/test.safe --prompt 'Enter new .*: ' --prompt 'Confirm .*: ' show --raw")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  PWDS_SECRET                  Secret sent at password prompts")
	fmt.Println("  PWDS_EXPECT_EXECUTABLE       Program to run")
	fmt.Println("  PWDS_EXPECT_PROMPT_TIMEOUT   Time to wait for each prompt (default: 1s)")
	fmt.Println("  PWDS_EXPECT_SESSION_TIMEOUT  Limit for the whole session (default: none)")
	fmt.Println("  PWDS_EXPECT_DEBUG            Print driver diagnostics (true/false)")
	fmt.Println("  PWDS_EXPECT_CONFIG           Path to config file")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/pwds-expect/config.yaml")
}
