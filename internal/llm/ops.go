package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"librenews/internal/news"
)

// Operation names, used for budgeting, caching and the usage log.
const (
	OpTranslate      = "translate"
	OpTranslateTitle = "translate_title"
	OpAnalyzeBias    = "analyze_bias"
	OpAssessTrust    = "assess_trust"
	OpDetectFake     = "detect_fake_news"
	OpAnalyzeImage   = "analyze_image"
	OpCorrelate      = "cross_regional_analysis"
	OpNameCluster    = "generate_cluster_name"
	OpSummarize      = "summarize"
)

// TrustAssessment is the trustworthiness verdict for one article.
type TrustAssessment struct {
	Score       int      `json:"score"` // 0-100
	Factors     []string `json:"factors"`
	Explanation string   `json:"explanation"`
}

// FakeNewsVerdict is the misinformation verdict for one article.
type FakeNewsVerdict struct {
	IsFake      bool     `json:"isFake"`
	Confidence  float64  `json:"confidence"` // 0-1
	RedFlags    []string `json:"redFlags"`
	Explanation string   `json:"explanation"`
}

// CorrelationReport compares coverage of one story across countries and
// political orientations.
type CorrelationReport struct {
	Topic                     string            `json:"topic"`
	Analysis                  string            `json:"analysis"`
	PerspectivesByCountry     map[string]string `json:"perspectivesByCountry"`
	PerspectivesByOrientation map[string]string `json:"perspectivesByOrientation"`
	CommonGround              []string          `json:"commonGround"`
	Divergences               []string          `json:"divergences"`
}

// TranslateContent translates an article body, preserving tone and nuance.
func (a *Analyst) TranslateContent(ctx context.Context, content, from, to string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following news article from %s to %s.
Preserve the original meaning, tone, and nuance. Only return the translated text, nothing else.

Article:
%s`, from, to, clip(content))

	text, err := a.generate(ctx, OpTranslate, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// TranslateTitle translates a headline, keeping its impact.
func (a *Analyst) TranslateTitle(ctx context.Context, title, from, to string) (string, error) {
	prompt := fmt.Sprintf(`Translate this news headline from %s to %s.
Preserve the tone and impact. Return ONLY the translated headline, nothing else.

Headline: %s`, from, to, title)

	text, err := a.generate(ctx, OpTranslateTitle, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// AnalyzeBias scores an article's political lean. A malformed model response
// degrades to a neutral verdict rather than an error; the article is still
// usable without the analysis.
func (a *Analyst) AnalyzeBias(ctx context.Context, content, source string) (news.BiasAnalysis, error) {
	content = cutRunes(content, 3000)
	prompt := fmt.Sprintf(`Analyze the political bias in the following news article from %s.

Article:
%s

Respond with this exact JSON structure:
{
  "score": <number from -1.0 (far left) to 1.0 (far right), 0 being neutral>,
  "confidence": <number from 0.0 to 1.0>,
  "explanation": "Brief explanation of the bias assessment",
  "indicators": ["indicator 1", "indicator 2"]
}

Respond with ONLY the JSON object.`, source, content)

	text, err := a.generate(ctx, OpAnalyzeBias, prompt)
	if err != nil {
		return news.BiasAnalysis{}, err
	}

	var result news.BiasAnalysis
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		a.log.Warn("bias response unparseable, using neutral verdict", "error", err)
		return news.BiasAnalysis{
			Confidence:  0.5,
			Explanation: "Analysis could not be completed",
		}, nil
	}
	if result.Explanation == "" {
		result.Explanation = "No explanation provided"
	}
	return result, nil
}

// AssessTrust rates an article's trustworthiness 0-100.
func (a *Analyst) AssessTrust(ctx context.Context, content, source string) (TrustAssessment, error) {
	prompt := fmt.Sprintf(`Assess trustworthiness of this article from %s.

Return JSON:
{
  "score": <0-100>,
  "factors": ["<factors>"],
  "explanation": "<explanation>"
}

Article:
%s

Return ONLY valid JSON.`, source, clip(content))

	text, err := a.generate(ctx, OpAssessTrust, prompt)
	if err != nil {
		return TrustAssessment{}, err
	}

	var result TrustAssessment
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		a.log.Warn("trust response unparseable, using midpoint", "error", err)
		return TrustAssessment{Score: 50, Explanation: "Unable to parse"}, nil
	}
	return result, nil
}

// DetectFakeNews screens an article for misinformation markers.
func (a *Analyst) DetectFakeNews(ctx context.Context, content string) (FakeNewsVerdict, error) {
	prompt := fmt.Sprintf(`Analyze for misinformation/fake news:

Return JSON:
{
  "isFake": <boolean>,
  "confidence": <0-1>,
  "redFlags": ["<concerns>"],
  "explanation": "<explanation>"
}

Article:
%s

Return ONLY valid JSON.`, clip(content))

	text, err := a.generate(ctx, OpDetectFake, prompt)
	if err != nil {
		return FakeNewsVerdict{}, err
	}

	var result FakeNewsVerdict
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		a.log.Warn("fake-news response unparseable, using benign verdict", "error", err)
		return FakeNewsVerdict{Confidence: 0.5, Explanation: "Unable to parse"}, nil
	}
	return result, nil
}

// AnalyzeImage assesses an article's lead image for manipulation or
// misleading use. The model reasons from the URL and article context.
func (a *Analyst) AnalyzeImage(ctx context.Context, imageURL, title, content string) (news.ImageAnalysis, error) {
	content = cutRunes(content, 1000)
	prompt := fmt.Sprintf(`Analyze this news article image for potential manipulation or misleading usage.

Image URL: %s
Article Title: %s
Article Context: %s

Evaluate:
1. Signs of image manipulation (editing, compositing, AI generation)
2. Whether the image is misleading in context (e.g., old photo used for new event, unrelated image, out-of-context)
3. Visual propaganda techniques or emotional manipulation

Return JSON:
{
  "isManipulated": <boolean - true if image shows signs of manipulation>,
  "manipulationScore": <0-100 - likelihood the image has been edited/manipulated>,
  "misleadingScore": <0-100 - how misleading is this image in the article's context>,
  "findings": ["specific finding 1", "specific finding 2"],
  "explanation": "Detailed explanation of the analysis"
}

Return ONLY valid JSON.`, imageURL, title, content)

	text, err := a.generate(ctx, OpAnalyzeImage, prompt)
	if err != nil {
		return news.ImageAnalysis{}, err
	}

	var result news.ImageAnalysis
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		a.log.Warn("image response unparseable, using benign verdict", "error", err)
		return news.ImageAnalysis{Explanation: "Unable to analyze image"}, nil
	}
	if result.Explanation == "" {
		result.Explanation = "Analysis could not be completed"
	}
	return result, nil
}

// Correlate compares how articles from different countries and orientations
// frame the same story. On a malformed response the raw text is kept as the
// analysis so the work is not thrown away.
func (a *Analyst) Correlate(ctx context.Context, articles []news.Article) (CorrelationReport, error) {
	countries := make([]string, 0, len(articles))
	orientSet := make(map[string]bool)
	var orientations []string
	var blocks []string

	for i, art := range articles {
		countries = append(countries, art.Country)
		if !orientSet[art.Orientation] {
			orientSet[art.Orientation] = true
			orientations = append(orientations, art.Orientation)
		}
		content := cutRunes(art.Content, 1500)
		blocks = append(blocks, fmt.Sprintf(
			"Article %d (%s, %s, Political Orientation: %s):\nTitle: %s\nContent: %s",
			i+1, art.SourceName, art.Country, art.Orientation, art.Title, content))
	}

	countriesList := strings.Join(countries, ", ")
	orientList := strings.Join(orientations, ", ")

	prompt := fmt.Sprintf(`Analyze these %d news articles from different countries (%s) and political orientations (%s) covering the same topic.

%s

Provide a comprehensive cross-regional and political analysis in the following JSON format:

{
  "topic": "A clear, concise description of the main topic being covered",
  "analysis": "A detailed 2-3 paragraph analysis of how the coverage differs across regions and political orientations, noting tone, emphasis, and framing differences",
  "perspectivesByCountry": {"<country>": "How this country's media frames and presents this story"},
  "perspectivesByOrientation": {"<orientation>": "How sources of this orientation cover this story (focus, framing, emphasis)"},
  "commonGround": ["Fact or perspective that all sources agree on"],
  "divergences": ["Key difference in how sources cover this story"]
}

Important:
- Include a perspective entry for each country represented in the articles (%s).
- Include perspective entries for each political orientation present: %s.
- Highlight how political bias affects the framing of this news story.
Respond with ONLY the JSON object, no additional text or formatting.`,
		len(articles), countriesList, orientList,
		strings.Join(blocks, "\n\n---\n\n"), countriesList, orientList)

	text, err := a.generate(ctx, OpCorrelate, prompt)
	if err != nil {
		return CorrelationReport{}, err
	}

	var report CorrelationReport
	if err := json.Unmarshal([]byte(stripFences(text)), &report); err != nil {
		a.log.Warn("correlation response unparseable, keeping raw analysis", "error", err)
		return CorrelationReport{
			Topic:    "Cross-Regional Analysis",
			Analysis: text,
		}, nil
	}
	if report.Topic == "" {
		report.Topic = "Cross-Regional News Analysis"
	}
	if report.Analysis == "" {
		report.Analysis = "Analysis not available"
	}
	return report, nil
}

// NameCluster produces a short human-readable name for a story group.
func (a *Analyst) NameCluster(ctx context.Context, titles []string) (string, error) {
	var list strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&list, "%d. %s\n", i+1, t)
	}

	prompt := fmt.Sprintf(`Based on these news article titles, generate a short (3-6 words) topic name that describes what they're about:

%s
Return ONLY the topic name, nothing else.`, list.String())

	text, err := a.generate(ctx, OpNameCluster, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripFences(text)), nil
}

// Summarize condenses an article into a few paragraphs.
func (a *Analyst) Summarize(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this news article in 2-3 concise paragraphs:

%s`, clip(content))

	text, err := a.generate(ctx, OpSummarize, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// stripFences removes a wrapping markdown code fence, with or without a
// language tag. Models add them despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
