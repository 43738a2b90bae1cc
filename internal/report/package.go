package report

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fsbdata/disclosure-crawler/internal/scrape"
)

const time10ms = 10 * time.Millisecond

// Bundle lists the artifacts produced for one run. Paths are empty for
// artifacts that could not be written.
type Bundle struct {
	Dir          string
	SummaryPath  string
	LogPath      string
	PerBankPaths []string
	ZipPath      string
}

// Packager writes run artifacts under a base directory and zips them.
type Packager struct {
	baseDir string
	logger  *zap.Logger
}

// NewPackager returns a packager rooted at baseDir.
func NewPackager(baseDir string, logger *zap.Logger) (*Packager, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", baseDir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Packager{baseDir: baseDir, logger: logger}, nil
}

// Package writes the run directory, the summary spreadsheet, the run log,
// per-bank extracts, and the zip archive. Individual artifact failures are
// logged and skipped; the run log is always written first so the archive is
// never empty, even when every target failed. A zip failure leaves ZipPath
// empty rather than failing the run, since the report can still go out with
// the summary spreadsheet attached.
func (p *Packager) Package(agg Aggregated) (Bundle, error) {
	stamp := agg.Summary.RunDate.Format("20060102")
	dirName := "저축은행_데이터_" + stamp
	dir := filepath.Join(p.baseDir, dirName)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Bundle{}, fmt.Errorf("create run dir %s: %w", dir, err)
	}
	bundle := Bundle{Dir: dir}

	logPath := filepath.Join(dir, "scraping_log_"+stamp+".log")
	if err := p.writeRunLog(logPath, agg); err != nil {
		return bundle, fmt.Errorf("write run log: %w", err)
	}
	bundle.LogPath = logPath

	summaryPath := filepath.Join(dir, "스크래핑_요약_"+stamp+".xlsx")
	if err := p.writeSummary(summaryPath, agg); err != nil {
		p.logger.Error("summary spreadsheet failed", zap.Error(err))
	} else {
		bundle.SummaryPath = summaryPath
	}

	for _, res := range agg.Summary.Results {
		if !res.Succeeded() {
			continue
		}
		path, err := p.writeBankFile(dir, res)
		if err != nil {
			p.logger.Warn("per-bank spreadsheet failed",
				zap.String("bank", res.Target.Name), zap.Error(err))
			continue
		}
		bundle.PerBankPaths = append(bundle.PerBankPaths, path)
	}

	zipPath := filepath.Join(p.baseDir, dirName+".zip")
	if err := zipDir(zipPath, dir, dirName); err != nil {
		// The summary and log are already on disk; the notifier falls back
		// to attaching the summary when ZipPath is empty.
		p.logger.Error("zip archive failed", zap.Error(err))
		return bundle, nil
	}
	bundle.ZipPath = zipPath
	return bundle, nil
}

func (p *Packager) writeRunLog(path string, agg Aggregated) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run_id=%s run_date=%s elapsed=%s\n",
		agg.Summary.RunID, agg.Summary.RunDate.Format("2006-01-02"), agg.Summary.Elapsed)
	fmt.Fprintf(&b, "expected_period=%s (%s)\n", agg.Summary.ExpectedPeriod, agg.Summary.PeriodReason)
	fmt.Fprintf(&b, "targets=%d success=%d failure=%d rate=%.1f%%\n",
		agg.Summary.TotalTargets, agg.Summary.SuccessCount, agg.Summary.FailureCount, agg.Summary.SuccessRate())
	for _, e := range agg.Log {
		fmt.Fprintf(&b, "%s\tstatus=%s\tattempts=%d\tduration=%s\tdate=%s\tcheck=%s\t%s\n",
			e.Bank, e.Status, e.Attempts, e.Duration.Round(time10ms), e.DisclosureDate, e.DateCheck, e.Detail)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

func (p *Packager) writeSummary(path string, agg Aggregated) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			p.logger.Debug("close xlsx", zap.Error(err))
		}
	}()

	logSheet := "요약"
	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := []string{"은행명", "처리 상태", "시도 횟수", "소요 시간", "공시 날짜", "날짜 확인", "오류"}
	if err := writeRow(f, logSheet, 1, header); err != nil {
		return err
	}
	for i, e := range agg.Log {
		row := []string{
			e.Bank, string(e.Status), strconv.Itoa(e.Attempts),
			e.Duration.Round(time10ms).String(), e.DisclosureDate, e.DateCheck, e.Detail,
		}
		if err := writeRow(f, logSheet, i+2, row); err != nil {
			return err
		}
	}

	wideSheet := "통합"
	if _, err := f.NewSheet(wideSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRow(f, wideSheet, 1, agg.Wide.Columns); err != nil {
		return err
	}
	for i, row := range agg.Wide.Rows {
		if err := writeRow(f, wideSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

var datePattern = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월`)

func (p *Packager) writeBankFile(dir string, res scrape.FetchResult) (string, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			p.logger.Debug("close xlsx", zap.Error(err))
		}
	}()

	infoSheet := "정보"
	if err := f.SetSheetName("Sheet1", infoSheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, infoSheet, 1, []string{"은행명", "공시날짜", "시도 횟수"}); err != nil {
		return "", err
	}
	if err := writeRow(f, infoSheet, 2, []string{res.Target.Name, res.DisclosureDate, strconv.Itoa(res.Attempts)}); err != nil {
		return "", err
	}

	for _, tbl := range res.Tables {
		sheet := sanitizeSheetName(tbl.Category)
		if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := writeRow(f, sheet, 1, []string{"항목", "값"}); err != nil {
			return "", err
		}
		for i, row := range tbl.Rows {
			if err := writeRow(f, sheet, i+2, []string{row.Field, row.Value}); err != nil {
				return "", err
			}
		}
	}

	path := filepath.Join(dir, res.Target.Name+"_"+fileDateSuffix(res.DisclosureDate)+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// fileDateSuffix turns "2024년9월말" into "2024-09" for filenames.
func fileDateSuffix(disclosureDate string) string {
	m := datePattern.FindStringSubmatch(disclosureDate)
	if m == nil {
		return "날짜정보없음"
	}
	month, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s-%02d", m[1], month)
}

var sheetNameForbidden = regexp.MustCompile(`[\\/*?:\[\]]`)

func sanitizeSheetName(name string) string {
	clean := sheetNameForbidden.ReplaceAllString(name, "")
	runes := []rune(clean)
	if len(runes) > 31 {
		return string(runes[:31])
	}
	return clean
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func zipDir(zipPath, dir, arcRoot string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", zipPath, err)
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(filepath.Join(arcRoot, rel)))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if walkErr != nil {
		_ = zw.Close()
		_ = out.Close()
		return fmt.Errorf("walk %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("close zip writer: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", zipPath, err)
	}
	return nil
}
