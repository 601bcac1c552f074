package types

// GatewayConfig configures the gateway readiness use case: where the IB
// Gateway API listens, how to start it, and the polling budget.
type GatewayConfig struct {
	Host        string `yaml:"host,omitempty" json:"host,omitempty"`
	Port        int    `yaml:"port,omitempty" json:"port,omitempty"`
	Paper       bool   `yaml:"paper,omitempty" json:"paper,omitempty"`
	ClientID    int    `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	StartCmd    string `yaml:"startCmd,omitempty" json:"startCmd,omitempty"`
	Warmup      string `yaml:"warmup,omitempty" json:"warmup,omitempty"`           // e.g. "45s"
	MaxAttempts int    `yaml:"maxAttempts,omitempty" json:"maxAttempts,omitempty"` // default 12
	Interval    string `yaml:"interval,omitempty" json:"interval,omitempty"`       // default "10s"
}

// MailConfig configures the mailbox polling use case: IMAP endpoint,
// search filter, polling budget and the local message archive.
type MailConfig struct {
	Host        string `yaml:"host,omitempty" json:"host,omitempty"`
	Port        int    `yaml:"port,omitempty" json:"port,omitempty"`
	Username    string `yaml:"username,omitempty" json:"username,omitempty"`
	Password    string `yaml:"-" json:"-"` // env only, never from yaml
	Mailbox     string `yaml:"mailbox,omitempty" json:"mailbox,omitempty"`
	Sender      string `yaml:"sender,omitempty" json:"sender,omitempty"`
	Subject     string `yaml:"subject,omitempty" json:"subject,omitempty"`
	UnreadOnly  bool   `yaml:"unreadOnly,omitempty" json:"unreadOnly,omitempty"`
	MaxAttempts int    `yaml:"maxAttempts,omitempty" json:"maxAttempts,omitempty"` // default 8
	Interval    string `yaml:"interval,omitempty" json:"interval,omitempty"`       // default "60s"
	SettleDelay string `yaml:"settleDelay,omitempty" json:"settleDelay,omitempty"` // default "10s"
	SettleProbe bool   `yaml:"settleProbe,omitempty" json:"settleProbe,omitempty"`
	ArchivePath string `yaml:"archivePath,omitempty" json:"archivePath,omitempty"`
}

// SMTPConfig configures the email notification sink.
type SMTPConfig struct {
	Host     string   `yaml:"host,omitempty" json:"host,omitempty"`
	Port     int      `yaml:"port,omitempty" json:"port,omitempty"`
	From     string   `yaml:"from,omitempty" json:"from,omitempty"`
	To       []string `yaml:"to,omitempty" json:"to,omitempty"`
	Username string   `yaml:"username,omitempty" json:"username,omitempty"`
	Password string   `yaml:"-" json:"-"` // env only, never from yaml
}

// SinkConfig configures one notification sink.
type SinkConfig struct {
	Type     SinkType    `yaml:"type" json:"type"`
	URL      string      `yaml:"url,omitempty" json:"url,omitempty"`           // webhook
	Path     string      `yaml:"path,omitempty" json:"path,omitempty"`         // file
	TopicARN string      `yaml:"topicArn,omitempty" json:"topicArn,omitempty"` // sns
	SMTP     *SMTPConfig `yaml:"smtp,omitempty" json:"smtp,omitempty"`         // email
}

// PipelineConfig configures the downstream pipeline command that runs after
// the gateway readiness run succeeds.
type PipelineConfig struct {
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
	WorkDir string `yaml:"workDir,omitempty" json:"workDir,omitempty"`
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ServerConfig configures the optional status HTTP server started alongside
// a polling run.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty"`
}

// ProjectConfig is the root of tradewatch.yaml.
type ProjectConfig struct {
	Gateway  GatewayConfig  `yaml:"gateway,omitempty" json:"gateway,omitempty"`
	Mail     MailConfig     `yaml:"mail,omitempty" json:"mail,omitempty"`
	Notify   []SinkConfig   `yaml:"notify,omitempty" json:"notify,omitempty"`
	Pipeline PipelineConfig `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty" json:"server,omitempty"`
}
