package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// TranslationService translates published articles through the DeepL API.
// Results are cached in redis keyed by content hash, so an unchanged article
// never pays for the same translation twice.
type TranslationService struct {
	appContext.DefaultService

	httpClient *http.Client
	apiURL     string
	apiKey     string

	sqlSvc      *PostgresService
	redisSvc    *RedisService
	cacheExpiry time.Duration
}

const TRANSLATION_SVC = "translation_svc"

func (svc TranslationService) Id() string {
	return TRANSLATION_SVC
}

func (svc *TranslationService) Configure(ctx *appContext.Context) error {
	svc.httpClient = &http.Client{
		Timeout: 30 * time.Second,
	}
	svc.apiKey = os.Getenv("DEEPL_API_KEY")
	svc.apiURL = os.Getenv("DEEPL_API_URL")
	if svc.apiURL == "" {
		svc.apiURL = "https://api-free.deepl.com/v2/translate"
	}
	svc.cacheExpiry = 7 * 24 * time.Hour

	return svc.DefaultService.Configure(ctx)
}

func (svc *TranslationService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)

	if svc.apiKey == "" {
		log.Warn("DEEPL_API_KEY not set, article translation disabled")
	}
	return nil
}

func (svc *TranslationService) TranslateArticle(ctx context.Context, slug string, req dto.TranslateArticleRequest) (*dto.TranslateArticleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}
	if svc.apiKey == "" {
		return nil, shared.NewInternalError(nil, "Translation is not configured")
	}

	article, err := svc.sqlSvc.GetArticleBySlug(slug)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Article not found")
	}

	targetLang := strings.ToUpper(req.TargetLang)
	cacheKey := svc.cacheKey(slug, targetLang, article.Title+"\x00"+article.Content)

	var cached dto.TranslateArticleResponse
	if err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached); err == nil && cached.Content != "" {
		cached.FromCache = true
		return &cached, nil
	}

	translated, sourceLang, err := svc.translate(ctx, []string{article.Title, article.Content}, targetLang)
	if err != nil {
		return nil, shared.NewInternalError(err, "Translation failed")
	}
	if len(translated) != 2 {
		return nil, shared.NewInternalError(nil, "Translation returned unexpected shape")
	}

	resp := &dto.TranslateArticleResponse{
		Slug:           slug,
		TargetLang:     targetLang,
		Title:          translated[0],
		Content:        translated[1],
		SourceLang:     sourceLang,
		FromCache:      false,
		CharacterCount: len(article.Title) + len(article.Content),
	}

	if err := svc.redisSvc.Set(ctx, cacheKey, mustJSON(resp), svc.cacheExpiry); err != nil {
		log.WithError(err).WithField("slug", slug).Warn("Failed to cache translation")
	}

	return resp, nil
}

func (svc *TranslationService) cacheKey(slug, targetLang, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("translation:%s:%s:%s", slug, targetLang, hex.EncodeToString(sum[:8]))
}

func (svc *TranslationService) translate(ctx context.Context, texts []string, targetLang string) ([]string, string, error) {
	form := url.Values{}
	for _, t := range texts {
		form.Add("text", t)
	}
	form.Set("target_lang", targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+svc.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := svc.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("deepl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("deepl returned status %d", resp.StatusCode)
	}

	var result struct {
		Translations []struct {
			DetectedSourceLanguage string `json:"detected_source_language"`
			Text                   string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode deepl response: %w", err)
	}

	out := make([]string, 0, len(result.Translations))
	sourceLang := ""
	for _, t := range result.Translations {
		out = append(out, t.Text)
		if sourceLang == "" {
			sourceLang = t.DetectedSourceLanguage
		}
	}
	return out, sourceLang, nil
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
