// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
	goversion "rsc.io/goversion/version"

	"github.com/google/x86lift/internal/exe"
)

var develRe = regexp.MustCompile(`devel\s+\+\w+`)

// InfoCommand prints what the loader found in an image.
func InfoCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "info <pid|path>",
		Aliases: []string{"image", "proc"},
		Short:   "Prints information about an image, and about the process running it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("missing PID or path")
			}
			img, err := st.open(args[0])
			if err != nil {
				return err
			}
			defer img.Close()
			imageInfo(st.stdout, img, st.conf.Prologues.Bool)
			if pid, err := strconv.Atoi(args[0]); err == nil && img.Path != args[0] {
				processInfo(st.stdout, pid)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

func imageInfo(w io.Writer, img *exe.Image, prologues bool) {
	fmt.Fprintf(w, "path:\t%v\n", img.Path)
	fmt.Fprintf(w, "format:\t%v\n", img.Format)
	fmt.Fprintf(w, "base:\t0x%08X\n", img.Base)
	fmt.Fprintf(w, "entry:\t0x%08X\n", img.Entry)
	fmt.Fprintf(w, "size:\t%d\n", len(img.Data))
	if img.Format != exe.FormatRaw {
		if v, err := goversion.ReadExe(img.Path); err == nil {
			fmt.Fprintf(w, "go version:\t%v\n", shortenVersion(v.Release))
		}
	}
	for _, s := range img.Symbols {
		fmt.Fprintf(w, "symbol:\t0x%08X\t%d\t%s\n", s.Addr, s.Size, s.Name)
	}
	if prologues {
		for _, a := range img.Prologues() {
			fmt.Fprintf(w, "prologue:\t0x%08X\n", a)
		}
	}
}

// processInfo prints what is known about the process running the image.
func processInfo(w io.Writer, pid int) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return
	}
	fmt.Fprintf(w, "PID:\t%v\n", pid)
	if v, err := p.Parent(); err == nil {
		fmt.Fprintf(w, "parent PID:\t%v\n", v.Pid)
	}
	if v, err := p.NumThreads(); err == nil {
		fmt.Fprintf(w, "threads:\t%v\n", v)
	}
	if v, err := p.Username(); err == nil {
		fmt.Fprintf(w, "username:\t%v\n", v)
	}
	if v, err := p.Cmdline(); err == nil {
		fmt.Fprintf(w, "cmd+args:\t%v\n", v)
	}
	if v, err := elapsedTime(p); err == nil {
		fmt.Fprintf(w, "elapsed time:\t%v\n", v)
	}
}

// elapsedTime shows the elapsed time of the process indicating how long the
// process has been running for.
func elapsedTime(p *process.Process) (string, error) {
	crtTime, err := p.CreateTime()
	if err != nil {
		return "", err
	}
	etime := time.Since(time.Unix(crtTime/1000, 0))
	return fmtEtimeDuration(etime), nil
}

// fmtEtimeDuration formats etime's duration based on ps' format:
// [[DD-]hh:]mm:ss
// format specification: http://linuxcommand.org/lc3_man_pages/ps1.html
func fmtEtimeDuration(d time.Duration) string {
	days := d / (24 * time.Hour)
	hours := d % (24 * time.Hour)
	minutes := hours % time.Hour
	seconds := math.Mod(minutes.Seconds(), 60)
	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%02d-", days)
	}
	if days > 0 || hours/time.Hour > 0 {
		fmt.Fprintf(&b, "%02d:", hours/time.Hour)
	}
	fmt.Fprintf(&b, "%02d:", minutes/time.Minute)
	fmt.Fprintf(&b, "%02.0f", seconds)
	return b.String()
}

func shortenVersion(v string) string {
	if !strings.HasPrefix(v, "devel") {
		return v
	}
	results := develRe.FindAllString(v, 1)
	if len(results) == 0 {
		return v
	}
	return results[0]
}
