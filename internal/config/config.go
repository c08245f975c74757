package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Redis struct {
		Addr string
	} `mapstructure:"redis"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	WhatsApp struct {
		APIBase       string `mapstructure:"api_base"`
		AccessToken   string `mapstructure:"access_token"`
		PhoneNumberID string `mapstructure:"phone_number_id"`
		VerifyToken   string `mapstructure:"verify_token"`
	} `mapstructure:"whatsapp"`

	Mpesa struct {
		ConsumerKey    string `mapstructure:"consumer_key"`
		ConsumerSecret string `mapstructure:"consumer_secret"`
		Shortcode      string `mapstructure:"shortcode"`
		Passkey        string `mapstructure:"passkey"`
		Environment    string `mapstructure:"environment"` // sandbox | production
		CallbackURL    string `mapstructure:"callback_url"`
	} `mapstructure:"mpesa"`

	Scheduler struct {
		Cron string // cron spec for the dispatch pass
	} `mapstructure:"scheduler"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("app.timezone", "Africa/Nairobi")
	v.SetDefault("whatsapp.api_base", "https://graph.facebook.com/v18.0")
	v.SetDefault("mpesa.environment", "sandbox")
	v.SetDefault("scheduler.cron", "*/15 * * * *")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}
