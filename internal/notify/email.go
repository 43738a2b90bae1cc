// Package notify delivers the run report over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"

	"github.com/fsbdata/disclosure-crawler/internal/report"
	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

// Config holds SMTP delivery settings.
type Config struct {
	SMTPHost   string
	SMTPPort   int
	Address    string
	Password   string
	Recipients []string
}

// Enabled reports whether delivery is configured. An unconfigured mailer
// skips sending instead of failing the run.
func (c Config) Enabled() bool {
	return c.Address != "" && c.Password != "" && len(c.Recipients) > 0
}

// Mailer sends one report email per run. Send errors propagate: delivery
// failure is the one condition that must fail the run visibly.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// NewMailer constructs a Mailer.
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = "smtp.gmail.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Send mails the HTML report with the given attachment. An empty attachment
// path sends the report without one.
func (m *Mailer) Send(agg report.Aggregated, attachmentPath string) error {
	if !m.cfg.Enabled() {
		m.logger.Warn("email delivery not configured, skipping notification")
		return nil
	}

	msg := email.NewEmail()
	msg.From = fmt.Sprintf("저축은행 데이터 수집기 <%s>", m.cfg.Address)
	msg.To = m.cfg.Recipients
	msg.Subject = Subject(agg.Summary)
	msg.HTML = []byte(BuildBody(agg, attachmentPath))

	if attachmentPath != "" {
		if _, err := os.Stat(attachmentPath); err != nil {
			return fmt.Errorf("attachment %s: %w", attachmentPath, err)
		}
		if _, err := msg.AttachFile(attachmentPath); err != nil {
			return fmt.Errorf("attach %s: %w", attachmentPath, err)
		}
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Address, m.cfg.Password, m.cfg.SMTPHost)
	if err := msg.Send(addr, auth); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	m.logger.Info("report email sent",
		zap.Strings("recipients", m.cfg.Recipients),
		zap.String("attachment", attachmentPath),
	)
	return nil
}

// Subject renders the run's subject line, e.g.
// "[저축은행 데이터] 20250829 스크래핑 결과 - 성공률 94.9%".
func Subject(summary scrape.RunSummary) string {
	return fmt.Sprintf("[저축은행 데이터] %s 스크래핑 결과 - 성공률 %.1f%%",
		summary.RunDate.Format("20060102"), summary.SuccessRate())
}

// BuildBody renders the HTML report body.
func BuildBody(agg report.Aggregated, attachmentPath string) string {
	s := agg.Summary
	var b strings.Builder

	b.WriteString(`<html><head><style>
body { font-family: Arial, sans-serif; margin: 20px; }
h2 { color: #2c3e50; }
.summary-box { border: 1px solid #ddd; padding: 15px; margin-bottom: 20px; background-color: #f9f9f9; border-radius: 5px; }
.status-completed { color: green; }
.status-failed { color: red; }
table { border-collapse: collapse; width: 95%; margin-top: 15px; font-size: 0.85em; }
th, td { border: 1px solid #ddd; padding: 5px; text-align: left; }
th { background-color: #f0f0f0; }
</style></head><body>`)

	fmt.Fprintf(&b, "<h2>저축은행 데이터 스크래핑 결과 (%s)</h2>", s.RunDate.Format("20060102"))
	fmt.Fprintf(&b, "<p><strong>예상 최신 공시 기준일:</strong> %s (근거: %s)</p>", s.ExpectedPeriod, s.PeriodReason)

	b.WriteString(`<div class="summary-box">`)
	fmt.Fprintf(&b, "<p>총 대상 은행: %d개</p>", s.TotalTargets)
	fmt.Fprintf(&b, `<p><span class="status-completed">✅ 성공: %d개</span></p>`, s.SuccessCount)
	fmt.Fprintf(&b, `<p><span class="status-failed">❌ 실패: %d개</span> (성공률: %.1f%%)</p>`, s.FailureCount, s.SuccessRate())
	if attachmentPath == "" {
		b.WriteString("<p>⚠️ 첨부 파일 생성 실패 - 로그를 확인하세요.</p>")
	}
	b.WriteString(`</div>`)

	writeFailedList(&b, s.Results)
	writeOutcomeTable(&b, agg.Log)

	b.WriteString("<br><p><small>자동 발송 메일</small></p></body></html>")
	return b.String()
}

func writeFailedList(b *strings.Builder, results []scrape.FetchResult) {
	var failed []string
	for _, res := range results {
		if !res.Succeeded() {
			failed = append(failed, res.Target.Name)
		}
	}
	b.WriteString("<h3>실패 은행 (최대 10개):</h3>")
	if len(failed) == 0 {
		b.WriteString("<p>없음</p>")
		return
	}
	shown := failed
	if len(shown) > 10 {
		shown = shown[:10]
	}
	b.WriteString("<ul>")
	for _, name := range shown {
		fmt.Fprintf(b, "<li>%s</li>", name)
	}
	b.WriteString("</ul>")
	if len(failed) > 10 {
		fmt.Fprintf(b, "<p>...외 %d개.</p>", len(failed)-10)
	}
}

func writeOutcomeTable(b *strings.Builder, entries []report.LogEntry) {
	b.WriteString("<h3>은행별 처리 현황:</h3>")
	b.WriteString("<table><tr><th>은행명</th><th>처리 상태</th><th>시도</th><th>공시 날짜</th><th>날짜 확인</th></tr>")
	for _, e := range entries {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			e.Bank, e.Status, e.Attempts, e.DisclosureDate, e.DateCheck)
	}
	b.WriteString("</table>")
}
