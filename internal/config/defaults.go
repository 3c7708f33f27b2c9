package config

import "github.com/spf13/viper"

// setDefaults seeds viper with the built-in defaults before any file or
// environment override is applied.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", "127.0.0.1:8732")

	v.SetDefault("storage.data_dir", "data")

	v.SetDefault("genesis.admin", "")
	v.SetDefault("genesis.whitelist", []string{})
	v.SetDefault("genesis.supported_pairs", []string{})
	v.SetDefault("genesis.request_price", uint64(1000))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}
