// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/SenryLee/LD-anonymization-tool/internal/config"
	"github.com/SenryLee/LD-anonymization-tool/internal/masker"
	"github.com/SenryLee/LD-anonymization-tool/internal/observability"
	"github.com/SenryLee/LD-anonymization-tool/internal/pipeline"
	"github.com/SenryLee/LD-anonymization-tool/internal/report"
	"github.com/SenryLee/LD-anonymization-tool/internal/security"
	"github.com/SenryLee/LD-anonymization-tool/internal/version"
)

// configFlags holds command line flag values
type configFlags struct {
	mode     string
	format   string
	checks   string
	keywords string
	pattern  string
	reveal   int
	maskChar string
	priority string
	bundle   bool
	debug    bool
	noColor  bool
	verbose  bool
	output   string
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	mode     string
	format   string
	checks   string
	keywords []string
	pattern  string
	reveal   int
	maskChar string
	priority string
	bundle   bool
	debug    bool
	noColor  bool
	verbose  bool
	output   string
}

func main() {
	inputFile := flag.String("file", "", "Path to the input document (.txt, .docx or .pdf)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	mode := flag.String("mode", "", "Masking mode: full, partial, regex, smart (default: smart)")
	keywords := flag.String("keywords", "", "Keywords to mask, separated by commas, semicolons or newlines")
	pattern := flag.String("pattern", "", "Custom regular expression for regex mode")
	reveal := flag.Int("reveal", 0, "Visible prefix length for partial and regex modes")
	maskChar := flag.String("mask-char", "", "Mask character for narrow runes (default: *)")
	checks := flag.String("checks", "", "Patterns to run: PHONE, NATIONAL_ID, EMAIL, BANK_CARD, IP_ADDRESS, CREDIT_CODE, COMPANY, ADDRESS, LICENSE_PLATE, AMOUNT, or combinations like 'PHONE,EMAIL' (default: all)")
	priority := flag.String("priority", "", "Overlap resolution: longest or catalog-order (default: longest)")
	outputFormat := flag.String("format", "", "Report format: text, json (default: text)")
	outputDir := flag.String("output", "", "Directory for the masked document and vault (default: input directory)")
	passwordFlag := flag.String("password", "", "Vault password (prompted interactively when omitted)")
	bundle := flag.Bool("bundle", false, "Pack the masked document and vault into a single zip")
	verbose := flag.Bool("verbose", false, "Display detailed run information")
	debug := flag.Bool("debug", false, "Enable debug logging of pipeline stages")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg := loadConfiguration(*configFile)

	if *listProfiles {
		printProfiles(cfg)
		os.Exit(0)
	}

	var activeProfile *config.Profile
	if *profileName != "" {
		activeProfile = cfg.GetProfile(*profileName)
		if activeProfile == nil {
			fmt.Fprintf(os.Stderr, "Error: profile %q not found (available: %s)\n",
				*profileName, strings.Join(cfg.ListProfiles(), ", "))
			os.Exit(1)
		}
	}

	final := resolveConfiguration(cfg, activeProfile, &configFlags{
		mode:     *mode,
		format:   *outputFormat,
		checks:   *checks,
		keywords: *keywords,
		pattern:  *pattern,
		reveal:   *reveal,
		maskChar: *maskChar,
		priority: *priority,
		bundle:   *bundle,
		debug:    *debug,
		noColor:  *noColor,
		verbose:  *verbose,
		output:   *outputDir,
	})

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	runMode, err := masker.ParseMode(final.mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	formatter, ok := report.Get(final.format)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (available: %s)\n",
			final.format, strings.Join(report.List(), ", "))
		os.Exit(1)
	}

	password, err := resolvePassword(*passwordFlag, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer password.Clear()

	observerLevel := observability.Off
	if final.debug {
		observerLevel = observability.Debug
	}
	observer := observability.NewStandardObserver(observerLevel, os.Stderr)

	var maskRune rune
	if final.maskChar != "" {
		maskRune = []rune(final.maskChar)[0]
	}

	result, err := pipeline.New(observer).Run(*inputFile, pipeline.Options{
		Mode:      runMode,
		Keywords:  final.keywords,
		Pattern:   final.pattern,
		Reveal:    final.reveal,
		MaskRune:  maskRune,
		Checks:    splitList(final.checks),
		Priority:  parsePriority(final.priority),
		Password:  password,
		OutputDir: final.output,
		Bundle:    final.bundle,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := formatter.Format(result.Summary, report.Options{
		NoColor: final.noColor || !isTerminal(os.Stdout),
		Verbose: final.verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// resolveConfiguration resolves final values from config file, profile, and
// command line flags, in rising precedence.
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Mode
	final.mode = "smart"
	if cfg.Defaults.Mode != "" {
		final.mode = cfg.Defaults.Mode
	}
	if activeProfile != nil && activeProfile.Mode != "" {
		final.mode = activeProfile.Mode
	}
	if isFlagSet("mode") && flags.mode != "" {
		final.mode = flags.mode
	}

	// Report format
	final.format = "text"
	if cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.format != "" {
		final.format = flags.format
	}

	// Checks
	final.checks = "all"
	if cfg.Defaults.Checks != "" {
		final.checks = cfg.Defaults.Checks
	}
	if activeProfile != nil && activeProfile.Checks != "" {
		final.checks = activeProfile.Checks
	}
	if isFlagSet("checks") && flags.checks != "" {
		final.checks = flags.checks
	}

	// Keywords accumulate: config-wide, then profile, then flag.
	final.keywords = append(final.keywords, cfg.Keywords...)
	if activeProfile != nil {
		final.keywords = append(final.keywords, activeProfile.Keywords...)
	}
	final.keywords = append(final.keywords, masker.NormalizeKeywords(flags.keywords)...)

	// Mask character
	final.maskChar = cfg.Defaults.MaskChar
	if activeProfile != nil && activeProfile.MaskChar != "" {
		final.maskChar = activeProfile.MaskChar
	}
	if isFlagSet("mask-char") && flags.maskChar != "" {
		final.maskChar = flags.maskChar
	}

	// Reveal
	final.reveal = cfg.Defaults.Reveal
	if activeProfile != nil && activeProfile.Reveal != 0 {
		final.reveal = activeProfile.Reveal
	}
	if isFlagSet("reveal") {
		final.reveal = flags.reveal
	}

	// Bundle
	final.bundle = cfg.Defaults.Bundle
	if activeProfile != nil {
		final.bundle = final.bundle || activeProfile.Bundle
	}
	if isFlagSet("bundle") {
		final.bundle = flags.bundle
	}

	// Debug
	final.debug = cfg.Defaults.Debug
	if activeProfile != nil {
		final.debug = final.debug || activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = cfg.Defaults.NoColor
	if activeProfile != nil {
		final.noColor = final.noColor || activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	final.pattern = flags.pattern
	final.priority = flags.priority
	final.verbose = flags.verbose
	final.output = flags.output
	if final.output == "" && cfg.Vault.OutputDir != "" && cfg.Vault.OutputDir != "." {
		final.output = cfg.Vault.OutputDir
	}

	return final
}

// isFlagSet checks if a flag was explicitly provided on the command line
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// resolvePassword takes the flag value or prompts on the terminal. confirm
// requests the password twice for newly created vaults.
func resolvePassword(flagValue string, confirm bool) (*security.SecureString, error) {
	if flagValue != "" {
		return security.NewSecureString(flagValue), nil
	}
	if !isTerminal(os.Stdin) {
		return nil, fmt.Errorf("no password given and stdin is not a terminal (use -password)")
	}

	fmt.Fprint(os.Stderr, "Vault password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm password: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		if string(first) != string(second) {
			return nil, fmt.Errorf("passwords do not match")
		}
		security.Wipe(second)
	}

	password := security.NewSecureString(string(first))
	security.Wipe(first)
	return password, nil
}

func parsePriority(s string) masker.Priority {
	if strings.EqualFold(s, "catalog-order") {
		return masker.PriorityCatalogOrder
	}
	return masker.PriorityLongestMatch
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printProfiles(cfg *config.Config) {
	profiles := cfg.ListProfiles()
	if len(profiles) == 0 {
		fmt.Println("No profiles defined.")
		return
	}
	fmt.Println("Available profiles:")
	for _, name := range profiles {
		profile := cfg.GetProfile(name)
		if profile.Description != "" {
			fmt.Printf("  %-15s %s\n", name, profile.Description)
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
