// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/saferwall/vbaproj"
	"github.com/saferwall/vbaproj/internal/vbalog"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	wantProj   bool
	wantRefs   bool
	wantMods   bool
	wantSource bool
	wantTokens bool
	strict     bool
)

// procedureDump renders one procedure's signature plus its lazily-parsed
// body for the --tokens dump; Body is left nil when that one procedure's
// body fails to parse, instead of failing the whole module.
type procedureDump struct {
	Name string               `json:"name"`
	Kind int                  `json:"kind"`
	Body []*vbaproj.Statement `json:"body,omitempty"`
}

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		log.Println("JSON indent error:", err)
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func dumpOne(filename string, cmd *cobra.Command) {
	log.Printf("Processing filename %s", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		log.Printf("Error while reading file: %s, reason: %s", filename, err)
		return
	}

	logger := vbalog.NewStdLogger(os.Stderr)
	prog, _, err := vbaproj.ParseProject(data, vbaproj.ParseOptions{Strict: strict, Logger: logger})
	if err != nil {
		log.Printf("Error while parsing project: %s, reason: %s", filename, err)
		return
	}

	if wantProj {
		b, _ := json.Marshal(prog.Project)
		fmt.Println(prettyPrint(b))
	}

	if wantRefs {
		b, _ := json.Marshal(prog.References)
		fmt.Println(prettyPrint(b))
	}

	if wantMods {
		b, _ := json.Marshal(prog.Modules)
		fmt.Println(prettyPrint(b))
	}

	if wantSource {
		for _, mod := range prog.Modules {
			fmt.Printf("--- %s ---\n%s\n", mod.Name, mod.Source)
		}
	}

	if wantTokens {
		for _, mod := range prog.Modules {
			parsed, err := vbaproj.ParseSource(mod.Source)
			if err != nil {
				log.Printf("%s: module %s: parse error: %s", filename, mod.Name, err)
				continue
			}

			dump := struct {
				Declarations []*vbaproj.Statement `json:"declarations"`
				Procedures   []procedureDump      `json:"procedures"`
			}{Declarations: parsed.Declarations}
			for _, proc := range parsed.Procedures {
				pd := procedureDump{Name: proc.Name, Kind: int(proc.Kind)}
				body, err := proc.ParseBody()
				if err != nil {
					// A malformed body only drops this one procedure from
					// the dump, not the whole module.
					log.Printf("%s: module %s: procedure %s: body parse error: %s", filename, mod.Name, proc.Name, err)
				} else {
					pd.Body = body
				}
				dump.Procedures = append(dump.Procedures, pd)
			}

			b, _ := json.Marshal(dump)
			fmt.Printf("--- %s ---\n%s\n", mod.Name, prettyPrint(b))
		}
	}
}

func dump(cmd *cobra.Command, args []string) {
	path := args[0]

	if !isDirectory(path) {
		dumpOne(path, cmd)
		return
	}

	var files []string
	filepath.Walk(path, func(p string, f os.FileInfo, err error) error {
		if err == nil && !f.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	for _, f := range files {
		dumpOne(f, cmd)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "vbadump",
		Short: "A legacy macro-project container parser",
		Long:  "Dumps project metadata, module source, and parsed module IR out of a legacy macro-project compound-file container.",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps a project container, or a directory of them",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVar(&wantProj, "project", false, "dump project info")
	dumpCmd.Flags().BoolVar(&wantRefs, "refs", false, "dump references")
	dumpCmd.Flags().BoolVar(&wantMods, "modules", false, "dump module metadata")
	dumpCmd.Flags().BoolVar(&wantSource, "source", false, "dump decompiled module source")
	dumpCmd.Flags().BoolVar(&wantTokens, "tokens", false, "dump the parsed module IR")
	dumpCmd.Flags().BoolVar(&strict, "strict", false, "fail on the first bad module instead of collecting warnings")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
