package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the mediamind version",
	Annotations: map[string]string{annotationNoServices: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("mediamind version %s (%s, %s/%s)\n", version, revision(), runtime.GOOS, runtime.GOARCH)
	},
}

// revision returns the VCS commit the binary was built from, or "unknown"
// for builds without VCS stamping.
func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "unknown"
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
