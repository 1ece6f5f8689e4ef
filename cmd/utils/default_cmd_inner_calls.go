package utils

import "github.com/spf13/cobra"

// PropagatePersistentPreRun walks up the command tree invoking each parent's
// PersistentPreRun, since cobra only runs the closest one by default.
func PropagatePersistentPreRun(cmd *cobra.Command, args []string) {
	if parent := cmd.Parent(); parent != nil && parent.PersistentPreRun != nil {
		parent.PersistentPreRun(parent, args)
	}
}

// CallHelpCommand is used as a command's RunE when the command only exists to
// group subcommands and has no behavior of its own.
func CallHelpCommand(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

var DefaultPersistentPreRun = PropagatePersistentPreRun
