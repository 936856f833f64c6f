// Package config provides configuration loading for the starter server.
//
// Configuration is read from starter.json in the working directory (if
// present), then overridden by STARTER_* environment variables, then by
// command-line flags applied by cmd/starter.
//
// # Configuration File Structure
//
//	{
//	  "name": "Starter",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "mountId": "root"
//	  },
//	  "session": {
//	    "ttl": "2m"
//	  },
//	  "i18n": {
//	    "source": "embed",
//	    "defaultLocale": "en-US",
//	    "supported": ["en-US", "fr-FR"]
//	  },
//	  "query": {
//	    "staleTime": "0s",
//	    "retry": 0
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "devtools": {
//	    "enabled": true
//	  }
//	}
//
// # Environment Overrides
//
// Every field has a variable named after its JSON path, upper-cased and
// prefixed: STARTER_SERVER_PORT, STARTER_I18N_SOURCE, STARTER_I18N_S3_BUCKET,
// STARTER_LOG_LEVEL and so on. Lists are comma-separated.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Listening on", cfg.Address())
package config
