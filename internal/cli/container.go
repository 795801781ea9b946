package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/computerscienceiscool/gocheck/pkg/sandbox"
)

var containerCmd = &cobra.Command{
	Use:   "container",
	Short: "Manage the gocheck container for this workspace",
}

var containerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the container used for this workspace",
	Args:  cobra.NoArgs,
	RunE:  runContainerStatus,
}

var containerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the container so the next run creates a fresh one",
	Args:  cobra.NoArgs,
	RunE:  runContainerReset,
}

func init() {
	containerCmd.AddCommand(containerStatusCmd)
	containerCmd.AddCommand(containerResetCmd)
	rootCmd.AddCommand(containerCmd)
}

// newDockerClient is replaced in tests
var newDockerClient = func() (sandbox.DockerAPI, error) {
	return sandbox.NewClient()
}

func findWorkspaceContainer(cmd *cobra.Command) (sandbox.DockerAPI, *sandbox.Handle, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	cli, err := newDockerClient()
	if err != nil {
		return nil, nil, err
	}
	if err := sandbox.CheckDockerAvailability(cmd.Context(), cli); err != nil {
		cli.Close()
		return nil, nil, err
	}

	h, err := sandbox.FindContainer(cmd.Context(), cli, containerConfig(cfg))
	if err != nil {
		cli.Close()
		return nil, nil, err
	}
	return cli, h, nil
}

func runContainerStatus(cmd *cobra.Command, args []string) error {
	cli, h, err := findWorkspaceContainer(cmd)
	if err != nil {
		return err
	}
	defer cli.Close()

	out := cmd.OutOrStdout()
	if h == nil {
		fmt.Fprintln(out, "No gocheck container is running for this workspace")
		return nil
	}
	fmt.Fprintf(out, "Container: %s\n", h.Name)
	fmt.Fprintf(out, "ID:        %s\n", h.ID)
	fmt.Fprintf(out, "Image:     %s\n", h.Image)
	fmt.Fprintf(out, "Mount:     %s\n", h.MountPath)
	return nil
}

func runContainerReset(cmd *cobra.Command, args []string) error {
	cli, h, err := findWorkspaceContainer(cmd)
	if err != nil {
		return err
	}
	defer cli.Close()

	if h == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No gocheck container to remove")
		return nil
	}
	if err := sandbox.RemoveContainer(cmd.Context(), h); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed container %s\n", h.Name)
	return nil
}
