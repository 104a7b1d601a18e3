// Package classify assigns a topic label to article text using a static
// keyword lexicon. Fast, local, no AI involved.
package classify

import "strings"

// topicEntry pairs a topic with its keyword list. Held in a slice rather than
// a map: ties resolve to the earliest topic, so iteration order is part of
// the contract.
type topicEntry struct {
	topic    string
	keywords []string
}

var lexicon = []topicEntry{
	{"politics", []string{"election", "president", "minister", "parliament", "senate", "congress", "vote", "political", "government", "legislation", "bill", "law", "democracy", "republican", "democrat", "party", "campaign"}},
	{"international", []string{"diplomatic", "embassy", "foreign", "treaty", "summit", "nato", "united nations", "bilateral", "sanctions", "alliance", "border", "refugee", "migration"}},
	{"cybersecurity", []string{"cyber", "hack", "breach", "ransomware", "malware", "phishing", "data leak", "vulnerability", "encryption", "security", "attack", "hacker", "threat actor"}},
	{"economy", []string{"economy", "economic", "gdp", "inflation", "interest rate", "stock", "market", "trade", "tariff", "finance", "bank", "currency", "recession", "growth"}},
	{"military", []string{"military", "army", "navy", "defense", "weapon", "missile", "nuclear", "war", "troops", "soldier", "combat", "airstrike", "drone"}},
	{"energy", []string{"oil", "gas", "energy", "renewable", "solar", "wind", "nuclear power", "pipeline", "opec", "petroleum", "electricity", "grid"}},
	{"technology", []string{"ai", "artificial intelligence", "tech", "software", "hardware", "startup", "silicon valley", "chip", "semiconductor", "innovation", "digital"}},
	{"health", []string{"health", "pandemic", "virus", "vaccine", "hospital", "disease", "outbreak", "medical", "who", "covid", "epidemic"}},
	{"environment", []string{"climate", "environment", "carbon", "emission", "warming", "pollution", "sustainable", "green", "forest", "biodiversity"}},
}

const (
	// DefaultTopic is returned when no keyword matches at all.
	DefaultTopic = "other"
	// defaultConfidence reflects "no signal", not "uncategorizable".
	defaultConfidence = 0.5
	// longKeywordLen: keywords longer than this score double.
	longKeywordLen = 5
	// confidenceDivisor: score/10 saturates confidence at 1.0.
	confidenceDivisor = 10.0
)

// Classify maps title+content to a topic label and a confidence in [0,1].
// Matching is plain substring containment on the lowercased text, so "encrypt"
// inside "encryption" counts; no word-boundary check is applied. Each keyword
// contributes at most once per topic. Pure and total: always returns a value.
func Classify(title, content string) (string, float64) {
	text := strings.ToLower(title + " " + content)

	bestTopic := ""
	bestScore := 0
	for _, entry := range lexicon {
		score := 0
		for _, kw := range entry.keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			if len(kw) > longKeywordLen {
				score += 2
			} else {
				score++
			}
		}
		// Strict > keeps the first topic on ties.
		if score > bestScore {
			bestTopic = entry.topic
			bestScore = score
		}
	}

	if bestScore == 0 {
		return DefaultTopic, defaultConfidence
	}

	confidence := float64(bestScore) / confidenceDivisor
	if confidence > 1 {
		confidence = 1
	}
	return bestTopic, confidence
}

// Topics returns the topic labels in declaration order, without the default.
func Topics() []string {
	out := make([]string, len(lexicon))
	for i, entry := range lexicon {
		out[i] = entry.topic
	}
	return out
}
