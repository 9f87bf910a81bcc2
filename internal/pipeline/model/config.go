package model

import "time"

// ================ Config ================
type AnswerModelConfig struct {
	Provider    string        `envconfig:"LLM_PROVIDER" default:"groq"`
	Model       string        `envconfig:"ANSWER_MODEL" default:"llama-3.3-70b-versatile"`
	MaxTokens   int           `envconfig:"ANSWER_MAX_TOKENS" default:"1024"`
	Temperature float32       `envconfig:"ANSWER_TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"ANSWER_TIMEOUT" default:"60s"`
}

type ProviderConfig struct {
	GroqAPIKey    string `envconfig:"GROQ_API_KEY"`
	GroqBaseURL   string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
}

type ArtifactConfig struct {
	Dir         string `envconfig:"ARTIFACT_DIR" default:"app/static/pdfs"`
	Prefix      string `envconfig:"ARTIFACT_PREFIX" default:"respuesta"`
	PDFRenderer bool   `envconfig:"PDF_RENDERER_ENABLED" default:"true"`
}

type MailConfig struct {
	Email       string `envconfig:"GMAIL_EMAIL"`
	AppPassword string `envconfig:"GMAIL_APP_PASSWORD"`
	Host        string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port        int    `envconfig:"SMTP_PORT" default:"587"`
}

type RunStoreConfig struct {
	TTL time.Duration `envconfig:"RUN_TTL" default:"24h"`
}
