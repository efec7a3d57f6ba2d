package requests

import (
	"os"
	"time"

	"github.com/samvad-hq/webapi/pkg/httpclient"
)

// Defaults carries process-wide settings that plan entries may override.
type Defaults struct {
	Timeout         time.Duration
	VerifyTLS       bool
	Debug           bool
	PublicRoot      string
	UserAgent       string
	BasicUserPrefix string
	Logger          httpclient.Logger
}

// Build returns a client configured for s and the options for its Request call.
// The credential is expanded against the environment so plans can reference
// secrets as ${NAME}.
func (s Spec) Build(d Defaults) (*httpclient.RequestClient, []httpclient.RequestOption) {
	prefix := d.BasicUserPrefix
	if prefix == "" {
		prefix = httpclient.DefaultBasicUserPrefix
	}

	client := httpclient.NewRequestClient(s.URL, os.ExpandEnv(s.Credential),
		httpclient.WithPublicRoot(d.PublicRoot),
		httpclient.WithUserAgent(d.UserAgent),
		httpclient.WithBasicUserPrefix(prefix),
		httpclient.WithLogger(d.Logger),
	).SetDebug(s.Debug || d.Debug)

	for _, kind := range s.Headers {
		client.SetHeader(kind)
	}
	for _, line := range s.CustomHeaders {
		client.SetHeader(line, httpclient.AsCustom())
	}

	timeout := d.Timeout
	if s.TimeoutSeconds > 0 {
		timeout = time.Duration(s.TimeoutSeconds) * time.Second
	}
	verify := d.VerifyTLS
	if s.VerifyTLS != nil {
		verify = *s.VerifyTLS
	}

	opts := []httpclient.RequestOption{
		httpclient.WithTimeout(timeout),
		httpclient.WithVerifyTLS(verify),
		httpclient.WithEncoding(httpclient.ParseEncoding(s.Encoding)),
	}
	return client, opts
}
