package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/config"
)

const sampleConfig = `
transport:
  http:
    port: 1234
    allowedOrigins: ["https://app.example.com"]
firebase:
  credentialsJSON: '{"project_id":"p"}'
  web:
    apiKey: key
    authDomain: p.firebaseapp.com
    projectId: p
    storageBucket: p.appspot.com
    messagingSenderId: "123"
    appId: "1:123:web:abc"
    measurementId: G-1
  vapidKey: vapid
  origins:
    app: http://localhost:8080
    published: https://app.example.com
  topics: [news]
  actionMaps:
    - action_name: open
      endpoint: /inbox
databaseResources:
  main:
    driver: postgres
    postgres:
      dsn: postgres://localhost/fcmpush
redis:
  cache:
    mode: single
    address: ["localhost:6379"]
tokenRepo:
  driver: postgres
  dbLabel: main
  cache:
    type: redis
    redisLabel: cache
    expiry: 5m
    prefix: tokens
unknownSection:
  ignored: true
`

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 1234, cfg.Transport.HTTP.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Transport.HTTP.AllowedOrigins)
	assert.Equal(t, "p", cfg.Firebase.Web.ProjectID)
	assert.Equal(t, "123", cfg.Firebase.Web.MessagingSenderID)
	assert.Equal(t, "https://app.example.com", cfg.Firebase.Origins.Published)
	require.Len(t, cfg.Firebase.ActionMaps, 1)
	assert.Equal(t, "/inbox", cfg.Firebase.ActionMaps[0].Endpoint)
	assert.Equal(t, 5*time.Minute, cfg.TokenRepo.Cache.Expiry)
	assert.Equal(t, "postgres://localhost/fcmpush", cfg.DatabaseResources["main"].Postgres.DSN)
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		Name    string
		Content string
	}{
		{
			Name:    "missing port",
			Content: "firebase: {disabled: true}\ntokenRepo: {driver: redis, redisLabel: r}\nredis: {r: {mode: single, address: [x]}}",
		},
		{
			Name:    "missing credentials",
			Content: "transport: {http: {port: 80}}\ntokenRepo: {driver: redis, redisLabel: r}\nredis: {r: {mode: single, address: [x]}}",
		},
		{
			Name:    "unknown db label",
			Content: "transport: {http: {port: 80}}\nfirebase: {disabled: true}\ntokenRepo: {driver: postgres, dbLabel: nope}",
		},
		{
			Name:    "unknown cache redis",
			Content: "transport: {http: {port: 80}}\nfirebase: {disabled: true}\ntokenRepo: {driver: redis, redisLabel: r, cache: {type: redis, redisLabel: x}}\nredis: {r: {mode: single, address: [x]}}",
		},
		{
			Name:    "bad redis mode",
			Content: "transport: {http: {port: 80}}\nfirebase: {disabled: true}\ntokenRepo: {driver: redis, redisLabel: r}\nredis: {r: {mode: ring, address: [x]}}",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			_, err := config.Parse([]byte(testCase.Content))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte(sampleConfig), 0o600))

	cfg, err := config.Load(file)
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.TokenRepo.DBLabel)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
