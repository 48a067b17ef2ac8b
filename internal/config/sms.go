package config

type SMSConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Provider   string        `yaml:"provider"`
	Twilio     *TwilioConfig `yaml:"twilio"`
	FromNumber string        `yaml:"from_number"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Enabled:  getEnvAsBool("SMS_ENABLED", false),
		Provider: getEnv("SMS_PROVIDER", "twilio"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		},
		FromNumber: getEnv("SMS_FROM_NUMBER", ""),
	}
}
