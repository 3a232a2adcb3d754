// Package codec implements the tabular exchange format spoken with the
// recommendation engine. Portfolio and opportunity data are serialized as
// plain-text, comma-separated sections the engine can read directly, and
// the engine's CSV reply is parsed back into raw insight records.
package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apperrors "nuvolari/internal/errors"
	"nuvolari/internal/models"
)

// RawInsight is one row of the engine's reply, before any of its
// references have been resolved against the database.
type RawInsight struct {
	TokenIn         string
	TokenInAmount   string
	TokenInDecimals int
	TokenOut        string
	APICall         string
	InsightShort    string
	InsightDetailed string
	ProtocolSlug    string
	InsightType     string
}

// FormatPortfolio serializes a portfolio snapshot into its three sections:
// PORTFOLIO_SUMMARY, TOKEN_HOLDINGS, and DEFI_POSITIONS. Position grades
// are recomputed locally from each position's risk score.
func FormatPortfolio(p *models.PortfolioSnapshot) string {
	var b strings.Builder

	b.WriteString("PORTFOLIO_SUMMARY\n")
	b.WriteString("TotalValue,RiskScore,RiskGrade,Address\n")
	fmt.Fprintf(&b, "$%.2f,%v,%s,%s\n", p.Total, p.RiskScore, p.RiskGrade, p.UserAddress)

	b.WriteString("\nTOKEN_HOLDINGS\n")
	b.WriteString("Symbol,Name,Amount,UsdValue,Percentage,RiskScore,Decimals\n")
	for _, t := range p.Tokens {
		fmt.Fprintf(&b, "%s,%s,%s,$%.2f,%v%%,%v,%d\n",
			t.Token.Symbol, t.Token.Name, t.Amount, t.UsdValue, t.Percentage, t.RiskScore, t.Decimals)
	}

	b.WriteString("\nDEFI_POSITIONS\n")
	b.WriteString("Protocol,Position Name,USD Value,Percentage,Risk Score,Risk Grade\n")
	for _, pos := range p.Positions {
		protocolName := pos.Pool.Protocol.Name
		if protocolName == "" {
			protocolName = "Unknown"
		}
		fmt.Fprintf(&b, "%s,%s,$%.2f,%v%%,%v,%s\n",
			protocolName, pos.Pool.Name, pos.UsdValue, pos.Percentage, pos.RiskScore, GradeForScore(pos.RiskScore))
	}

	return b.String()
}

// FormatPools serializes the pool opportunity set as a YIELD_POOLS section.
func FormatPools(pools []models.PoolWithRisk) string {
	var b strings.Builder
	b.WriteString("YIELD_POOLS\n")
	b.WriteString("Protocol,ProtocolSlug,Name,APY,Risk Score,Risk Grade,PoolAddress\n")
	for _, pool := range pools {
		protocolName := pool.Protocol.Name
		if protocolName == "" {
			protocolName = "Unknown"
		}
		// APY data is not tracked yet; emit a fixed placeholder so the
		// column stays populated for the engine.
		fmt.Fprintf(&b, "%s,%s,%s,1%%,%.1f,%s,%s\n",
			protocolName, pool.Protocol.Slug(), pool.Name,
			pool.CombinedRiskScore, GradeForScore(pool.CombinedRiskScore), pool.ReceiptTokenID)
	}
	return b.String()
}

// FormatTokens serializes the token opportunity set as a TOKENS section.
func FormatTokens(tokens []models.TokenWithRisk) string {
	var b strings.Builder
	b.WriteString("TOKENS\n")
	b.WriteString("Token,RiskScore,Address,Decimals\n")
	for _, t := range tokens {
		fmt.Fprintf(&b, "%s,%v,%s,%d\n", t.Symbol, t.RiskScore, t.ID, t.Decimals)
	}
	return b.String()
}

// GradeForScore maps a 0-5 risk score to its letter grade. The partition
// is shared by pools, positions, and whole portfolios.
func GradeForScore(score float64) string {
	switch {
	case score <= 1.8:
		return "A"
	case score <= 2.4:
		return "B"
	case score <= 3.0:
		return "C"
	case score <= 3.6:
		return "D"
	default:
		return "E"
	}
}

// ParseInsights parses the engine's CSV reply into raw insight records.
// The header row defines field order, so reordered columns are tolerated;
// fields are split on commas with quote-aware handling. A reply with fewer
// than two lines (header plus at least one row) is a parse failure.
func ParseInsights(reply string) ([]RawInsight, error) {
	cleaned := stripCodeFences(reply)

	lines := strings.Split(cleaned, "\n")
	if len(lines) < 2 {
		return nil, apperrors.Wrap(apperrors.ErrEngineReplyInvalid,
			fmt.Errorf("reply has %d line(s), need header and at least one row", len(lines)))
	}

	headers := strings.Split(lines[0], ",")
	insights := make([]RawInsight, 0, len(lines)-1)

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := splitQuoted(line)

		var insight RawInsight
		for i, header := range headers {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			assignField(&insight, strings.TrimSpace(header), value)
		}
		insights = append(insights, insight)
	}

	return insights, nil
}

// stripCodeFences removes markdown code-fence wrapping the engine
// sometimes adds around its reply.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```csv\n", "")
	s = strings.ReplaceAll(s, "```\n", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// splitQuoted tokenizes a CSV line on commas. A double quote toggles an
// in-quotes mode during which commas are literal; the quotes themselves
// are dropped.
func splitQuoted(line string) []string {
	var values []string
	var current strings.Builder
	inQuotes := false

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	values = append(values, current.String())
	return values
}

// assignField maps a header name to its RawInsight field. Headers are
// matched on their leading-lowercase form, so "TokenIn" and "tokenIn" name
// the same field. TokenInDecimals is parsed as an integer and defaults to
// 0 on failure; everything else is taken as the raw string.
func assignField(insight *RawInsight, header, value string) {
	switch lowerFirst(header) {
	case "tokenIn":
		insight.TokenIn = value
	case "tokenInAmount":
		insight.TokenInAmount = value
	case "tokenInDecimals":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			n = 0
		}
		insight.TokenInDecimals = n
	case "tokenOut":
		insight.TokenOut = value
	case "apiCall":
		insight.APICall = value
	case "insightShort":
		insight.InsightShort = value
	case "insightDetailed":
		insight.InsightDetailed = value
	case "protocolSlug":
		insight.ProtocolSlug = value
	case "insightType":
		insight.InsightType = value
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
