package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

var optimizeAndRun bool

var optimizeCmd = &cobra.Command{
	Use:   "optimize <mission>",
	Short: "Optimize a mission into an agent prompt",
	Long: `Send a mission description to the backend and print the optimized prompt.

With --run, start the agent on the optimized task right away.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOptimize,
}

var runCmd = &cobra.Command{
	Use:   "run <task-id>",
	Short: "Start the agent on an optimized task",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running agent",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeAndRun, "run", false, "run the optimized task")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	description := strings.TrimSpace(strings.Join(args, " "))
	if description == "" {
		return session.ErrEmptyDescription
	}

	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	b.log.WithField("length", len(description)).Info("optimizing mission")
	task, err := b.client.Optimize(cmd.Context(), description)
	if err != nil {
		return describeError(b, err)
	}

	out := cmd.OutOrStdout()
	printTask(out, task)

	if !optimizeAndRun {
		if task.HasID() {
			fmt.Fprintln(out, styleHint.Render(fmt.Sprintf("Run it with 'autoreflex run %d'.", task.TaskID())))
		}
		return nil
	}
	if !task.HasID() {
		return fmt.Errorf("cannot run: %w", session.ErrNoTaskID)
	}
	return startRun(cmd, b, task.TaskID())
}

func runRun(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid task id: %s", args[0])
	}

	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	return startRun(cmd, b, id)
}

func startRun(cmd *cobra.Command, b *backend, id int64) error {
	b.log.WithField("task_id", id).Info("running task")
	ack, err := b.client.Run(cmd.Context(), id)
	if err != nil {
		return describeError(b, err)
	}

	out := cmd.OutOrStdout()
	msg := ack.Message
	if msg == "" {
		msg = "Agent started."
	}
	fmt.Fprintln(out, styleSuccess.Render(fmt.Sprintf("Task #%d: %s", id, msg)))
	fmt.Fprintln(out, styleHint.Render("Follow it with 'autoreflex watch'."))
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	b.log.Info("stopping agent")
	ack, err := b.client.Stop(cmd.Context())
	if err != nil {
		return describeError(b, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styleLabel.Render("Stop:"), styleValue.Render(ack.Status))
	return nil
}

func printTask(out io.Writer, task *models.OptimizedTask) {
	id := styleWarning.Render("unsaved")
	if task.HasID() {
		id = styleCommand.Render(fmt.Sprintf("#%d", task.TaskID()))
	}
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Task:"), id)
	fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Mission:"), styleValue.Render(task.OriginalTask))
	fmt.Fprintf(out, "%s %d\n", styleLabel.Render("Estimated tokens:"), task.EstimatedTokens)
	if task.Reasoning != "" {
		fmt.Fprintf(out, "%s %s\n", styleLabel.Render("Reasoning:"), task.Reasoning)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, task.OptimizedPrompt)
	fmt.Fprintln(out)
}
