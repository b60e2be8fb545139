// Copyright LD Anonymization Tool Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/SenryLee/LD-anonymization-tool/internal/observability"
	"github.com/SenryLee/LD-anonymization-tool/internal/pipeline"
	"github.com/SenryLee/LD-anonymization-tool/internal/report"
	"github.com/SenryLee/LD-anonymization-tool/internal/security"
	"github.com/SenryLee/LD-anonymization-tool/internal/version"
)

func main() {
	var (
		inputFile    = flag.String("file", "", "Path to the masked document, or a bundle zip from a previous run")
		vaultFile    = flag.String("vault", "", "Path to the restoration vault (not needed with a bundle)")
		outputDir    = flag.String("output", "", "Directory for the restored document (default: input directory)")
		passwordFlag = flag.String("password", "", "Vault password (prompted interactively when omitted)")
		outputFormat = flag.String("format", "text", "Report format: text, json")
		debug        = flag.Bool("debug", false, "Enable debug logging of pipeline stages")
		noColor      = flag.Bool("no-color", false, "Disable colored output")
		showVersion  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	maskedPath := *inputFile
	vaultPath := *vaultFile

	// A bundle carries the masked document and its vault together.
	if strings.HasSuffix(strings.ToLower(maskedPath), ".zip") {
		workDir, err := os.MkdirTemp("", "ld-restore-*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(workDir)

		maskedPath, vaultPath, err = pipeline.ExtractBundle(*inputFile, workDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if *outputDir == "" {
			*outputDir = "."
		}
	}

	if vaultPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -vault is required unless -file is a bundle")
		os.Exit(1)
	}

	formatter, ok := report.Get(*outputFormat)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (available: %s)\n",
			*outputFormat, strings.Join(report.List(), ", "))
		os.Exit(1)
	}

	password, err := resolvePassword(*passwordFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer password.Clear()

	observerLevel := observability.Off
	if *debug {
		observerLevel = observability.Debug
	}
	observer := observability.NewStandardObserver(observerLevel, os.Stderr)

	result, err := pipeline.New(observer).Restore(maskedPath, pipeline.RestoreOptions{
		VaultPath: vaultPath,
		Password:  password,
		OutputDir: *outputDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out, err := formatter.Format(result.Summary, report.Options{
		NoColor: *noColor || !term.IsTerminal(int(os.Stdout.Fd())),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// resolvePassword takes the flag value or prompts on the terminal.
func resolvePassword(flagValue string) (*security.SecureString, error) {
	if flagValue != "" {
		return security.NewSecureString(flagValue), nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("no password given and stdin is not a terminal (use -password)")
	}

	fmt.Fprint(os.Stderr, "Vault password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	password := security.NewSecureString(string(raw))
	security.Wipe(raw)
	return password, nil
}
