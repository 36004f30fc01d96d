package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"corysite/internal/config"
	"corysite/internal/roi"
)

// inputFlag binds a command-line flag to one projection input.
type inputFlag struct {
	name  string
	usage string
	field func(in *roi.Inputs) *float64
}

var inputFlags = []inputFlag{
	{"monthly-inquiries", "new inquiries per month", func(in *roi.Inputs) *float64 { return &in.MonthlyInquiries }},
	{"contact-rate", "share of inquiries reached today (%)", func(in *roi.Inputs) *float64 { return &in.ContactRate }},
	{"conversion-rate", "contacted inquiries that apply (%)", func(in *roi.Inputs) *float64 { return &in.ConversionRate }},
	{"avg-tuition", "average annual tuition per enrollment", func(in *roi.Inputs) *float64 { return &in.AvgTuition }},
	{"staff-cost", "loaded staff cost per hour", func(in *roi.Inputs) *float64 { return &in.StaffCost }},
	{"touches-per-lead", "manual touches per inquiry", func(in *roi.Inputs) *float64 { return &in.TouchesPerLead }},
	{"cory-contact-rate", "share of inquiries reached with automation (%)", func(in *roi.Inputs) *float64 { return &in.CoryContactRate }},
	{"response-uplift", "relative conversion uplift from faster response (%)", func(in *roi.Inputs) *float64 { return &in.ResponseUplift }},
	{"automation-coverage", "share of manual touches automated (%)", func(in *roi.Inputs) *float64 { return &in.AutomationCoverage }},
}

type roiOutput struct {
	Preset    string        `json:"preset"`
	Inputs    roi.Inputs    `json:"inputs"`
	Results   roi.Results   `json:"results"`
	Formatted roi.Formatted `json:"formatted"`
}

func newROICmd() *cobra.Command {
	var (
		sitePath string
		preset   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Project the annual impact of admissions automation",
		Long: `Runs the ROI projection for a preset scenario. Individual inputs can be
overridden with flags; unset flags keep the preset's value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site := config.DefaultSiteConfig()
			if sitePath != "" {
				loaded, err := config.LoadSiteConfig(sitePath)
				if err != nil {
					return fmt.Errorf("load site config: %w", err)
				}
				site = loaded
			}

			name := preset
			if name == "" {
				name = site.ROI.DefaultPreset
			}
			p, ok := site.Preset(name)
			if !ok {
				return fmt.Errorf("unknown preset %q", name)
			}

			in := p.Inputs
			for _, f := range inputFlags {
				if !cmd.Flags().Changed(f.name) {
					continue
				}
				v, err := cmd.Flags().GetFloat64(f.name)
				if err != nil {
					return err
				}
				*f.field(&in) = v
			}
			if err := roi.Validate(in); err != nil {
				return err
			}

			results := roi.Calculate(in)
			out := roiOutput{Preset: name, Inputs: in, Results: results, Formatted: results.Format()}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return writeROITable(cmd, out)
		},
	}

	defaults := roi.Default()
	for _, f := range inputFlags {
		cmd.Flags().Float64(f.name, *f.field(&defaults), f.usage)
	}
	cmd.Flags().StringVar(&sitePath, "site", "", "site config file with ROI presets")
	cmd.Flags().StringVar(&preset, "preset", "", "preset to start from (default: the site's default preset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw and formatted results as JSON")
	return cmd
}

func writeROITable(cmd *cobra.Command, out roiOutput) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Additional applications", out.Formatted.AdditionalApps},
		{"Additional enrollments", out.Formatted.AdditionalEnrollments},
		{"Tuition lift", out.Formatted.TuitionLift},
		{"Staff hours saved", out.Formatted.StaffHoursSaved},
		{"Total benefit", out.Formatted.TotalBenefit},
		{"Platform cost", out.Formatted.PlatformCost},
		{"Net benefit", out.Formatted.NetBenefit},
		{"Annual ROI", out.Formatted.AnnualROI},
	}

	fmt.Fprintf(w, "Preset\t%s\n", out.Preset)
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
	return w.Flush()
}
