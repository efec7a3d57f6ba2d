package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/webapi/internal/config"
	"github.com/samvad-hq/webapi/internal/logger"
	"github.com/samvad-hq/webapi/pkg/httpclient"
	"github.com/spf13/cobra"
)

type requestFlags struct {
	url           string
	method        string
	credential    string
	headers       []string
	customHeaders []string
	fields        []string
	data          string
	encoding      string
	timeout       time.Duration
	verifyTLS     bool
	debug         bool
	decode        bool
	publicRoot    string
	verbose       bool
}

func newRequestCommand() *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send a single request",
		Long: `Send one request and print its status code and body.

Examples:
  webapi request --url https://api.example.com/users
  webapi request -X POST --url https://api.example.com/users -H json -H authorizationbearer \
      --credential "$TOKEN" -f name=ada -f tags[]=x
  webapi request -X PUT --url https://api.example.com/users/1 --encoding urlencoded -d '{"active":true}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRequest(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.url, "url", "u", "", "Request URL")
	cmd.Flags().StringVarP(&f.method, "method", "X", "GET", "HTTP method (GET, POST, PUT, DELETE)")
	cmd.Flags().StringVarP(&f.credential, "credential", "c", "", "Credential used by the authorization presets")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Header preset: "+strings.Join(httpclient.HeaderKinds, ", "))
	cmd.Flags().StringArrayVar(&f.customHeaders, "custom-header", nil, `Raw header line, e.g. "X-Trace: 1"`)
	cmd.Flags().StringArrayVarP(&f.fields, "field", "f", nil, "Body field as key=value (repeatable)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Body fields as a JSON object")
	cmd.Flags().StringVar(&f.encoding, "encoding", "json", "Body encoding: json or urlencoded")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Request timeout (default from config)")
	cmd.Flags().BoolVar(&f.verifyTLS, "verify-tls", false, "Verify TLS certificates")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Append a transport trace to <public-root>/temp/curl.debug")
	cmd.Flags().BoolVar(&f.decode, "decode", false, "Decode the response as JSON and pretty print it")
	cmd.Flags().StringVar(&f.publicRoot, "public-root", "", "Content root for the debug trace (default from config)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log client activity")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func runRequest(cmd *cobra.Command, f *requestFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	presets, err := parsePresets(f.headers)
	if err != nil {
		return err
	}
	fields, err := parseFields(f.fields, f.data)
	if err != nil {
		return err
	}

	var log httpclient.Logger = logger.NopLogger{}
	if f.verbose {
		cfg.LogLevel = "debug"
		zl, err := logger.Init(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Close()
		log = zl
	}

	publicRoot := cfg.PublicRoot
	if f.publicRoot != "" {
		publicRoot = f.publicRoot
	}
	client := httpclient.NewRequestClient(f.url, f.credential,
		httpclient.WithPublicRoot(publicRoot),
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithBasicUserPrefix(cfg.BasicUserPrefix),
		httpclient.WithLogger(log),
	).SetDebug(f.debug || cfg.Debug)

	for _, kind := range presets {
		client.SetHeader(kind)
	}
	for _, line := range f.customHeaders {
		client.SetHeader(line, httpclient.AsCustom())
	}

	timeout := cfg.RequestTimeout
	if f.timeout > 0 {
		timeout = f.timeout
	}
	verify := cfg.VerifyTLS
	if cmd.Flags().Changed("verify-tls") {
		verify = f.verifyTLS
	}

	start := time.Now()
	client.Request(cmd.Context(), strings.ToUpper(f.method), fields,
		httpclient.WithTimeout(timeout),
		httpclient.WithVerifyTLS(verify),
		httpclient.WithEncoding(httpclient.ParseEncoding(f.encoding)),
	)
	elapsed := time.Since(start).Milliseconds()

	out := cmd.OutOrStdout()
	code, _ := client.ResponseCode()
	printStatus(out, strings.ToUpper(f.method), f.url, client.Status(), code, elapsed)
	if !client.Status() {
		return fmt.Errorf("request failed: %s", client.Response())
	}

	if !f.decode {
		fmt.Fprintln(out, client.Response())
		return nil
	}
	decoded, err := client.DecodeResponse(true)
	if err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Fprintln(out, string(pretty))
	return nil
}

// parsePresets normalises -H values and rejects unknown presets.
func parsePresets(raw []string) ([]string, error) {
	kinds := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if !httpclient.IsHeaderKind(k) {
			return nil, fmt.Errorf("unknown header preset %q (want one of %s)", k, strings.Join(httpclient.HeaderKinds, ", "))
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// parseFields merges a JSON object with key=value pairs. Keys ending in []
// collect into lists.
func parseFields(pairs []string, data string) (map[string]any, error) {
	fields := map[string]any{}
	if strings.TrimSpace(data) != "" {
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("parse --data: %w", err)
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q must be key=value", pair)
		}
		if list, isList := strings.CutSuffix(key, "[]"); isList {
			existing, _ := fields[list].([]any)
			fields[list] = append(existing, raw)
			continue
		}
		fields[key] = raw
	}

	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}
