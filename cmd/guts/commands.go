package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"guts/adapters/stats/engine"
	"guts/app"
	"guts/domain/guts"
	"guts/internal/errors"
)

func newLoglikCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "loglik [experiment.yaml]",
		Short: "Compute survival probabilities and the log-likelihood",
		Long: `Compute survival probabilities at the observed time points and the
log-likelihood of the observed survivor counts.

Example: guts loglik experiment.yaml --pretty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			exp, m, err := c.LoadExperiment(args[0])
			if err != nil {
				return err
			}

			session := c.NewSession(m)
			session.CalcLoglikelihood()
			r := session.Result()

			out := newModelOutput(exp.Name, m)
			out.Result = newResultOutput(r)
			if err := writeJSON(cmd.OutOrStdout(), out, opts.pretty); err != nil {
				return err
			}
			return failureOf(r)
		},
	}
}

func newSurvivalCmd(opts *rootOptions) *cobra.Command {
	var times []float64
	var steps int
	var withGrid bool

	cmd := &cobra.Command{
		Use:   "survival [experiment.yaml]",
		Short: "Compute survival probabilities",
		Long: `Compute survival probabilities. Without --times or --steps the
experiment's predict list is used, and failing that the observed time points.

Examples:
  guts survival experiment.yaml
  guts survival experiment.yaml --times 0,0.5,1,2
  guts survival experiment.yaml --steps 10 --grid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(times) > 0 && steps > 0 {
				return errors.InvalidInput("--times and --steps are mutually exclusive")
			}
			c, err := opts.build()
			if err != nil {
				return err
			}
			exp, m, err := c.LoadExperiment(args[0])
			if err != nil {
				return err
			}

			session := c.NewSession(m)
			var r *guts.Result
			switch {
			case steps > 0:
				r = session.CalcSurvivalProbabilitiesN(steps)
			case len(times) > 0:
				r = session.CalcSurvivalProbabilitiesAt(times)
			case len(exp.Predict) > 0:
				r = session.CalcSurvivalProbabilitiesAt(exp.Predict)
			default:
				session.CalcSurvivalProbabilities()
				r = session.Result()
			}

			out := newModelOutput(exp.Name, m)
			out.Result = newResultOutput(r)
			if withGrid {
				out.Grid = gridOutput(m)
			}
			if err := writeJSON(cmd.OutOrStdout(), out, opts.pretty); err != nil {
				return err
			}
			return failureOf(r)
		},
	}

	cmd.Flags().Float64SliceVar(&times, "times", nil, "Comma separated time points")
	cmd.Flags().IntVar(&steps, "steps", 0, "Predict at 0, 1, ..., steps-1")
	cmd.Flags().BoolVar(&withGrid, "grid", false, "Include a threshold grid summary")
	return cmd
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "sweep [experiment.yaml]",
		Short: "Evaluate the log-likelihood for every parameter vector of an experiment",
		Long: `Evaluate the log-likelihood for each vector listed under sweep: in the
experiment file. Vectors are evaluated concurrently, one engine per task.

Example: guts sweep experiment.yaml --workers 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.build()
			if err != nil {
				return err
			}
			exp, m, err := c.LoadExperiment(args[0])
			if err != nil {
				return err
			}
			if len(exp.Sweep) == 0 {
				return errors.InvalidInput(fmt.Sprintf("experiment %s has no sweep vectors", exp.Name))
			}

			svc := c.Sweep
			if workers > 0 {
				svc = app.NewSweepService(c.NewEvaluator, workers, c.Logger.Named("sweep"))
			}
			report, err := svc.Run(cmd.Context(), m, exp.Sweep)
			if err != nil {
				return errors.WithCode(errors.CodeComputation, err)
			}
			return writeJSON(cmd.OutOrStdout(), newSweepOutput(exp.Name, m, report), opts.pretty)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent evaluations (default from sweep.workers)")
	return cmd
}

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [distribution] [submodel]",
		Short: "List parameter names per distribution and submodel",
		Long: `List the parameter vector layout for every distribution and submodel
combination, or for the one given.

Example: guts schema lognormal it`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dists := []guts.Distribution{guts.Lognormal, guts.PointMass, guts.Empirical}
			subs := []guts.Submodel{guts.StochasticDeath, guts.IndividualTolerance}

			if len(args) > 0 {
				d, ok := guts.ParseDistribution(args[0])
				if !ok {
					return errors.InvalidInput(fmt.Sprintf("unknown distribution %q", args[0]))
				}
				dists = []guts.Distribution{d}
			}
			if len(args) > 1 {
				s, ok := guts.ParseSubmodel(args[1])
				if !ok {
					return errors.InvalidInput(fmt.Sprintf("unknown submodel %q", args[1]))
				}
				subs = []guts.Submodel{s}
			}

			var out []schemaOutput
			for _, d := range dists {
				for _, s := range subs {
					schema := guts.SchemaFor(d, s)
					out = append(out, schemaOutput{
						Distribution: d.String(),
						Submodel:     s.String(),
						Parameters:   schema.Names(),
					})
				}
			}
			return writeJSON(cmd.OutOrStdout(), out, opts.pretty)
		},
	}
}

// gridOutput summarizes the threshold grid of m, or reports why there is none
func gridOutput(m guts.Model) *gridSummaryOutput {
	if m.Diagnostics().HasErrors() {
		return &gridSummaryOutput{Error: "model has unresolved input errors"}
	}
	w := m.WorkingParameters()
	grid, err := engine.BuildGrid(m.Distribution(), w, m.SampleResolution(), m.Interval(), m.Sample())
	if err != nil {
		return &gridSummaryOutput{Error: err.Error()}
	}
	summary, err := engine.SummarizeGrid(grid, m.Distribution(), w)
	if err != nil {
		return &gridSummaryOutput{Error: err.Error()}
	}
	return &gridSummaryOutput{Summary: &summary}
}

// failureOf turns an undefined computation into a computation error so the
// process exit status reflects it
func failureOf(r *guts.Result) error {
	if r == nil || !r.Diagnostics.HasErrors() {
		return nil
	}
	var parts []string
	for _, d := range r.Diagnostics.Active() {
		if d.Severity == guts.SeverityError {
			parts = append(parts, fmt.Sprintf("%s: %s", d.Category, d.Message))
		}
	}
	return errors.New(errors.CodeComputation, "computation failed: "+strings.Join(parts, "; "))
}
