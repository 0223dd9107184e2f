package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"numerologyx/internal/render"
	"numerologyx/internal/types"
)

var (
	calcName   string
	calcDOB    string
	showAll    bool
	showLang   string
	forecastYr int
	exportDir  string
	resetAll   bool
)

// calculateCmd generates and persists a new core report
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Generate a numerology report from a full name and date of birth",
	Example: `  numerologyx calculate --name "Asha Rao" --dob 1990-05-17`,
	RunE: runCalculate,
}

// showCmd prints the restored report
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current numerology report",
	RunE:  runShow,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Show the yearly forecast",
	RunE:  runForecast,
}

var vastuCmd = &cobra.Command{
	Use:   "vastu",
	Short: "Show the Vastu (spatial harmony) report",
	RunE:  runVastu,
}

var remediesCmd = &cobra.Command{
	Use:   "remedies",
	Short: "Show the remedies report",
	RunE:  runRemedies,
}

var pulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Show today's Daily Cosmic Pulse",
	RunE:  runPulse,
}

// translateCmd renders a report in another language
var translateCmd = &cobra.Command{
	Use:       "translate [core|predictions|vastu|remedies] [en|hi|bn]",
	Short:     "Translate a report",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"core", "predictions", "vastu", "remedies"},
	RunE:      runTranslate,
}

// exportCmd writes a report in the download format
var exportCmd = &cobra.Command{
	Use:   "export [core|predictions|vastu|remedies|daily_pulse]",
	Short: "Write a report to a text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and session status",
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the current identity and every persisted report",
	RunE:  runReset,
}

func init() {
	calculateCmd.Flags().StringVar(&calcName, "name", "", "Full name (required)")
	calculateCmd.Flags().StringVar(&calcDOB, "dob", "", "Date of birth, YYYY-MM-DD (required)")
	calculateCmd.MarkFlagRequired("name")
	calculateCmd.MarkFlagRequired("dob")

	showCmd.Flags().BoolVar(&showAll, "all", false, "Also fetch forecast, Vastu and remedies")
	showCmd.Flags().StringVar(&showLang, "lang", "", "Display language: en, hi, bn")

	forecastCmd.Flags().IntVar(&forecastYr, "year", 0, "Forecast year (default: current year)")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().IntVar(&forecastYr, "year", 0, "Forecast year for predictions (default: current year)")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "Also discard token usage totals")
}

// printReport writes report as terminal markdown, or as plain text with --plain.
func printReport(w io.Writer, a *app, report interface{}) {
	if plain {
		var id types.Identity
		if st := a.orch.State(); st.Identity != nil {
			id = *st.Identity
		}
		fmt.Fprint(w, render.Text(report, id, time.Now()))
		return
	}
	md := render.Markdown(report)
	out, err := render.Terminal(md, 80)
	if err != nil {
		out = md
	}
	fmt.Fprint(w, out)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orch.Calculate(ctx, types.Identity{FullName: calcName, DOB: calcDOB})
	if err != nil {
		return err
	}
	a.orch.WaitBackground()

	out := cmd.OutOrStdout()
	printReport(out, a, report)
	if traits := a.orch.State().Profile.Value; traits != nil {
		printReport(out, a, traits)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.orch.State()
	if st.Core.Value == nil {
		fmt.Fprintln(cmd.OutOrStdout(), `No report yet. Run "numerologyx calculate --name ... --dob YYYY-MM-DD".`)
		return nil
	}

	out := cmd.OutOrStdout()
	if showLang != "" {
		d, err := a.orch.TranslateReport(ctx, types.KindCore, strings.ToLower(showLang))
		if err != nil {
			return err
		}
		printReport(out, a, d.Report)
	} else {
		printReport(out, a, st.Core.Value)
	}
	if st.Profile.Value != nil {
		printReport(out, a, st.Profile.Value)
	}

	if !showAll {
		return nil
	}
	if err := a.orch.Preload(ctx); err != nil {
		return err
	}
	st = a.orch.State()
	for _, r := range []interface{}{st.Predictions.Value, st.Vastu.Value, st.Remedies.Value} {
		printReport(out, a, r)
	}
	return nil
}

func forecastYear() int {
	if forecastYr != 0 {
		return forecastYr
	}
	return time.Now().Year()
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orch.RequestPredictions(ctx, forecastYear())
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), a, report)
	return nil
}

func runVastu(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orch.RequestSpatialHarmonyReport(ctx)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), a, report)
	return nil
}

func runRemedies(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.orch.RequestRemediesReport(ctx)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), a, report)
	return nil
}

func runPulse(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pulse, err := a.orch.DailyPulse(ctx)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), a, pulse)
	return nil
}

// loadKind fetches the report of kind so it can be displayed or exported.
func loadKind(cmd *cobra.Command, a *app, kind types.ReportKind) error {
	ctx := cmd.Context()
	var err error
	switch kind {
	case types.KindPredictions:
		_, err = a.orch.RequestPredictions(ctx, forecastYear())
	case types.KindVastu:
		_, err = a.orch.RequestSpatialHarmonyReport(ctx)
	case types.KindRemedies:
		_, err = a.orch.RequestRemediesReport(ctx)
	case types.KindDailyPulse:
		_, err = a.orch.DailyPulse(ctx)
	}
	return err
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	cmd.SetContext(ctx)

	kind, err := types.ParseReportKind(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadKind(cmd, a, kind); err != nil {
		return err
	}
	d, err := a.orch.TranslateReport(ctx, kind, strings.ToLower(args[1]))
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), a, d.Report)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	cmd.SetContext(ctx)

	kind, err := types.ParseReportKind(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := loadKind(cmd, a, kind); err != nil {
		return err
	}

	st := a.orch.State()
	if st.Identity == nil {
		return fmt.Errorf("no report to export: run calculate first")
	}

	var report interface{}
	switch kind {
	case types.KindDailyPulse:
		report = st.DailyPulse.Value
	case types.KindProfile:
		return fmt.Errorf("profile traits have no download format")
	default:
		d, err := a.orch.DisplayedReport(kind)
		if err != nil {
			return err
		}
		report = d.Report
	}

	name := render.Filename(kind, *st.Identity, st.PredictionsYear)
	path := filepath.Join(exportDir, name)
	text := render.Text(report, *st.Identity, time.Now())
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.orch.State()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config:      %s\n", configPath)
	fmt.Fprintf(out, "Store:       %s (profile %s)\n", a.cfg.Store.Backend, a.cfg.Store.Profile)
	fmt.Fprintf(out, "API key:     %v\n", a.cfg.HasAPIKey())
	fmt.Fprintf(out, "Model:       %s\n", a.cfg.Gateway.Model)
	u := a.usage.Stats()
	fmt.Fprintf(out, "Usage:       %d calls, %d tokens since %s\n", u.Total.Calls, u.Total.Total, a.usage.Since().Format(types.DateLayout))
	if st.Identity == nil {
		fmt.Fprintln(out, "Identity:    none")
		return nil
	}
	fmt.Fprintf(out, "Identity:    %s (%s)\n", st.Identity.FullName, st.Identity.DOB)
	if calc := st.Core.Value.PrimaryCalculations(); calc != nil {
		fmt.Fprintf(out, "Life Path:   %d\n", calc.LifePath.Number)
	}
	fmt.Fprintf(out, "Traits:      %v\n", st.Profile.Value != nil)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.Reset(ctx); err != nil {
		return err
	}
	if resetAll {
		if err := a.usage.Reset(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
	return nil
}
