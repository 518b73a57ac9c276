package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/scribe/gen"
)

// newGenerateCmd builds the generate command. Every flag is also
// readable from the environment under the SCRIBE_ prefix, so pipelines
// can run a bare "scribe generate" with SCRIBE_SCHEMA and SCRIBE_TARGET
// exported.
func newGenerateCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate migration scripts and schema constants",
		Long: "Generate reads a YAML schema file and writes one migration script\n" +
			"per dialect plus a Go source file naming every table and column.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []gen.Option{}
			if s := v.GetString("schema"); s != "" {
				opts = append(opts, gen.WithSchema(s))
			}
			if t := v.GetString("target"); t != "" {
				opts = append(opts, gen.WithTarget(t))
			}
			if pkg := v.GetString("package"); pkg != "" {
				opts = append(opts, gen.WithPackage(pkg))
			}
			if ds := v.GetStringSlice("dialect"); len(ds) > 0 {
				opts = append(opts, gen.WithDialects(ds...))
			}
			if h := v.GetString("header"); h != "" {
				opts = append(opts, gen.WithHeader(h))
			}
			if mv := v.GetString("min-version"); mv != "" {
				opts = append(opts, gen.WithMinVersion(mv))
			}
			if n := v.GetInt("workers"); n > 0 {
				opts = append(opts, gen.WithWorkers(n))
			}
			cfg, err := gen.NewConfig(opts...)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !v.GetBool("watch") {
				if err := gen.Generate(ctx, cfg); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ wrote artifacts to %s\n", cfg.Target)
				return nil
			}
			w, err := gen.Watch(ctx, cfg)
			if err != nil {
				return err
			}
			defer w.Stop()
			if err := w.Start(); err != nil {
				return err
			}
			color.New(color.FgCyan).Fprintf(cmd.OutOrStdout(), "watching %s, press Ctrl-C to stop\n", cfg.Schema)
			<-ctx.Done()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("schema", "s", "schema.yaml", "path of the YAML schema file")
	flags.StringP("target", "t", "", "directory artifacts are written into")
	flags.String("package", "", "package name of the constants file (default: target base name)")
	flags.StringSlice("dialect", nil, "dialects to build migrations for (default: all)")
	flags.String("header", "", "header comment of generated Go files")
	flags.String("min-version", "", "refuse to generate with an older scribe release")
	flags.Int("workers", 0, "parallel artifact writes (default: GOMAXPROCS)")
	flags.Bool("watch", false, "watch the schema file and regenerate on change")
	for _, name := range []string{"schema", "target", "package", "dialect", "header", "min-version", "workers", "watch"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}
