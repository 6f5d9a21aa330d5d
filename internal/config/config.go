package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type Bot struct {
	Token     string
	Domain    string
	WebAppURL string
}

type Storage struct {
	RoomsFile          string
	SubmissionsLogFile string
	DatasetLogFile     string
}

type Config struct {
	HTTP    HTTPServer
	Bot     Bot
	Storage Storage
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:    *newHTTP(),
		Bot:     *newBot(),
		Storage: *newStorage(),
	}

	log.Printf("%s backend config : %+v\n", logtag, cfg)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newBot() *Bot {
	return &Bot{
		Token:     getenv("BOT_TOKEN", ""),
		Domain:    getenv("BOT_DOMAIN", "t.me/taptap_mood_bot"),
		WebAppURL: getenv("WEBAPP_URL", ""),
	}
}

func newStorage() *Storage {
	dataDir := getenv("DATA_DIR", "./data")
	return &Storage{
		RoomsFile:          filepath.Join(dataDir, "rooms.json"),
		SubmissionsLogFile: filepath.Join(dataDir, "submissions.jsonl"),
		DatasetLogFile:     filepath.Join(dataDir, "dataset.jsonl"),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}
