package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabclean/internal/outlier"
)

var sleepCSV = strings.Join([]string{
	"Student,Sleep Duration (hours),Screen Time (hours),GPA,Caffeine (mg)",
	"s0,7,3,3.2,120",
	"s1,6.5,4,3.4,80",
	"s2,8,5,3.1,",
	"s3,7.5,3.5,3.6,900",
	"s4,6,4.5,3.3,95",
	"s5,7,4,3.5,110",
	"s6,8.5,-40,3.0,100",
	"s7,7,3,3.4,60",
	"s8,6.5,5,3.2,130",
	"s9,7,4,3.3,90",
	"s10,30,4,3.5,85",
	"s11,7.2,3.8,0.2,70",
}, "\n") + "\n"

// resetFlags restores every flag of c and its subcommands to its default so
// values from one invocation do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCLI_CleanWritesOutputAndReport(t *testing.T) {
	home := setupHome(t)
	in := writeFile(t, home, "sleep.csv", sleepCSV)
	outPath := filepath.Join(home, "out", "clean.csv")
	repPath := filepath.Join(home, "report.yaml")

	stdout, _, err := runCmd(t, "clean", in,
		"--zscore", "GPA",
		"--iqr-left", "Screen Time",
		"--iqr-right", "Sleep Duration (hours)",
		"--threshold", "2.5",
		"-o", outPath,
		"--report", repPath)
	require.NoError(t, err)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "Student,Sleep Duration (hours),Screen Time (hours),GPA,Caffeine (mg)", lines[0])
	assert.Equal(t, "s2,8,5,3.1,", lines[3], "missing pass-through cell stays empty")
	assert.Equal(t, "s3,7.5,3.5,3.6,900", lines[4], "pass-through extreme is kept")
	for _, gone := range []string{"s6,", "s10,", "s11,"} {
		assert.NotContains(t, string(b), "\n"+gone)
	}

	assert.Contains(t, stdout, "Kept 9 of 12 rows")
	assert.Contains(t, stdout, "iqr_right")
	assert.Contains(t, stdout, "Wrote report to")

	rep, err := os.ReadFile(repPath)
	require.NoError(t, err)
	for _, want := range []string{"run_id:", "source: " + in, "rows_after: 9", "strategy: zscore", "zscore_threshold: 2.5"} {
		assert.Contains(t, string(rep), want)
	}
}

func TestCLI_CleanToStdoutUsesConfigColumns(t *testing.T) {
	home := setupHome(t)
	in := writeFile(t, home, "sleep.csv", sleepCSV)
	cfgPath := writeFile(t, home, "tabclean.yaml", strings.Join([]string{
		"zscore_threshold: 2.5",
		"columns:",
		"  zscore: [GPA]",
		"  iqr_right: [Sleep Duration]",
	}, "\n")+"\n")

	stdout, stderr, err := runCmd(t, "--config", cfgPath, "clean", in, "--sequential")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 11, "header plus 10 rows: screen time is not filtered")
	assert.NotContains(t, stdout, "s10,")
	assert.NotContains(t, stdout, "s11,")
	assert.Contains(t, stdout, "s6,8.5,-40,3,100")
	assert.Contains(t, stderr, "Kept 10 of 12 rows")
}

func TestCLI_CleanRejectsUnknownColumn(t *testing.T) {
	home := setupHome(t)
	in := writeFile(t, home, "sleep.csv", sleepCSV)
	out := filepath.Join(home, "clean.csv")

	_, _, err := runCmd(t, "clean", in, "--zscore", "Weight", "-o", out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, outlier.ErrConfiguration))
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output on configuration error")

	_, _, err = runCmd(t, "clean", in, "--zscore", "GPA", "--iqr-left", "gpa", "-o", out)
	assert.ErrorIs(t, err, outlier.ErrConfiguration)

	_, _, err = runCmd(t, "clean", in, "--threshold", "0", "-o", out)
	assert.ErrorIs(t, err, outlier.ErrConfiguration)
}

func TestCLI_CleanWarnsOnEmptyResult(t *testing.T) {
	home := setupHome(t)
	in := writeFile(t, home, "seq.csv", "a,b\n1,1\n2,2\n3,3\n4,4\n5,5\n6,6\n7,7\n8,8\n9,9\n10,10\n")

	stdout, stderr, err := runCmd(t, "clean", in,
		"--iqr-right", "a", "--iqr-left", "b",
		"--multiplier", "0", "--q-low", "0.25", "--q-high", "0.3")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", stdout)
	assert.Contains(t, stderr, "empty_result")
}

func TestCLI_SweepAndProfile(t *testing.T) {
	home := setupHome(t)
	in := writeFile(t, home, "gpa.csv", "id,gpa\na,1\nb,2\nc,3\nd,4\ne,5\nf,6\ng,7\nh,8\ni,9\nj,100\n")

	stdout, _, err := runCmd(t, "sweep", in, "--thresholds", "2,5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "90.0%")
	assert.Contains(t, stdout, "100.0%")

	stdout, _, err = runCmd(t, "profile", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[DATASET SUMMARY]")
	assert.Contains(t, stdout, "- gpa: numeric (non-null 10, missing 0.0%)")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := setupHome(t)

	_, _, err := runCmd(t, "config", "set", "zscore_threshold", "3")
	require.NoError(t, err)
	_, _, err = runCmd(t, "config", "set", "columns.iqr_right", "Sleep Duration, Screen Time")
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(home, ".tabclean", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "zscore_threshold: 3")

	stdout, _, err := runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "zscore_threshold: 3")
	assert.Contains(t, stdout, "- Sleep Duration")
	assert.Contains(t, stdout, "- Screen Time")

	_, _, err = runCmd(t, "config", "set", "columns.zscore", "screen time")
	assert.ErrorIs(t, err, outlier.ErrConfiguration, "column already in iqr_right")
	_, _, err = runCmd(t, "config", "set", "iqr_lower_pct", "0.95")
	assert.ErrorIs(t, err, outlier.ErrConfiguration)
	_, _, err = runCmd(t, "config", "set", "log_format", "xml")
	assert.Error(t, err)
	_, _, err = runCmd(t, "config", "set", "nope", "1")
	assert.Error(t, err)
}
