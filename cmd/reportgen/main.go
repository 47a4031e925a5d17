package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"client-report-engine/internal/common/config"
	"client-report-engine/internal/common/logger"
	"client-report-engine/internal/convert"
	"client-report-engine/internal/render"
)

// reportgen renders a DOCX template against a JSON context file, without
// touching the brand store. Intended for scripting and template debugging.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("reportgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	templateName := fs.String("template", "", "template file name inside the template directory")
	dataPath := fs.String("data", "", "path to a JSON file holding the template context")
	docxOut := fs.String("docx-out", "", "explicit output DOCX filename (optional)")
	pdf := fs.Bool("pdf", false, "also convert the rendered DOCX to PDF")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *templateName == "" || *dataPath == "" {
		fmt.Fprintln(stderr, "reportgen: --template and --data are required")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "reportgen: config load failed: %v\n", err)
		return 1
	}

	raw, err := os.ReadFile(*dataPath)
	if err != nil {
		fmt.Fprintf(stderr, "reportgen: %v\n", err)
		return 1
	}
	var templateContext map[string]interface{}
	if err := json.Unmarshal(raw, &templateContext); err != nil {
		fmt.Fprintf(stderr, "reportgen: invalid context JSON: %v\n", err)
		return 1
	}

	log := logger.NewStructured("error", cfg.Logging.Format)

	renderer := render.New(cfg.Paths.TemplateDir, cfg.Paths.OutputDir, log)
	docxPath, err := renderer.Render(*templateName, templateContext, *docxOut)
	if err != nil {
		fmt.Fprintf(stderr, "reportgen: render failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "DOCX written to %s\n", docxPath)

	if *pdf {
		converter := convert.New(cfg.Convert, log)
		pdfPath, err := converter.Convert(context.Background(), docxPath, "")
		if err != nil {
			fmt.Fprintf(stderr, "reportgen: conversion failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "PDF written to %s\n", pdfPath)
	}

	return 0
}
