// Sensible defaults for every configuration section.
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		LLM:       DefaultLLMConfig(),
		Embedding: DefaultEmbeddingConfig(),
		Pinecone:  DefaultPineconeConfig(),
		Redis:     DefaultRedisConfig(),
		History:   DefaultHistoryConfig(),
		Auth:      DefaultAuthConfig(),
		Ingest:    DefaultIngestConfig(),
		Pipeline:  DefaultPipelineConfig(),
		Log:       DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultLLMConfig returns the default completion backend configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "gemini",
		Timeout:  60 * time.Second,
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com",
		},
		Ollama: OllamaConfig{
			Model:       "gemma3:4b",
			BaseURL:     "http://localhost:11434",
			Temperature: 0.7,
		},
	}
}

// DefaultEmbeddingConfig returns the default embedding configuration.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Model:   "sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2",
		BaseURL: "https://api-inference.huggingface.co",
		Timeout: 30 * time.Second,
	}
}

// DefaultPineconeConfig returns the default vector index configuration.
func DefaultPineconeConfig() PineconeConfig {
	return PineconeConfig{
		Index:   "multilingual-text",
		Timeout: 30 * time.Second,
	}
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		DB:           0,
		PoolSize:     10,
		AnswerTTL:    time.Hour,
		CacheEnabled: true,
	}
}

// DefaultHistoryConfig returns the default interaction log configuration.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Backend: "file",
		Path:    "chat_history.json",
		DSN:     "campusrag.db",
	}
}

// DefaultAuthConfig returns the default authentication configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		TokenTTL:    24 * time.Hour,
		RosterPath:  "students.json",
		UserDBPath:  "users.json",
		RecordsPath: "students.json",
	}
}

// DefaultIngestConfig returns the default ingestion configuration.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		ChunkSizeWords: 300,
		MetadataMaxLen: 3000,
		RejectOversize: false,
		EmbedBatchSize: 32,
		Parallelism:    4,
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TopK:            3,
		RetrieveTimeout: 15 * time.Second,
		CompleteTimeout: 60 * time.Second,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}
