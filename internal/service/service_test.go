package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sizetable/internal/config"
	"github.com/JonMunkholm/sizetable/internal/core"
	"github.com/JonMunkholm/sizetable/internal/glossary"
	"github.com/JonMunkholm/sizetable/internal/translate"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	env := map[string]string{"GLOSSARY_SOURCES": "embedded"}
	for k, v := range vars {
		env[k] = v
	}
	cfg, err := config.LoadWith(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("LoadWith() error = %v", err)
	}
	return cfg
}

func buildService(t *testing.T, vars map[string]string) *Service {
	t.Helper()
	svc, err := Build(context.Background(), testConfig(t, vars), Deps{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return svc
}

const sampleCSV = "品番,SZ,採寸\n" +
	"B 20,02,着丈:72 ヒップ:100\n" +
	"A001,M,ヒップ:96 着丈:70\n" +
	"A001,S,ヒップ:92 着丈:68\n" +
	"B 20,01,着丈:70 ヒップ:98\n" +
	"A001,M,ヒップ:0 着丈:0\n"

func TestProcess_CSV(t *testing.T) {
	svc := buildService(t, nil)

	res, err := svc.Process(context.Background(), "sizes.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := []core.ItemTable{
		{
			Code:     "A001",
			SizeCode: "M",
			Header:   []string{"尺码", "臀围", "衣长"},
			Rows:     [][]string{{"M", "96", "70"}, {"S", "92", "68"}},
		},
		{
			Code:     "B_20",
			SizeCode: "02",
			Header:   []string{"尺码", "衣长", "臀围"},
			Rows:     [][]string{{"II", "72", "100"}, {"I", "70", "98"}},
		},
	}
	if !reflect.DeepEqual(res.Tables, want) {
		t.Errorf("Tables = %+v\nwant %+v", res.Tables, want)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.Records != 4 {
		t.Errorf("Records = %d, want 4", res.Records)
	}
}

func TestProcess_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"品番", "サイズ", "採寸"},
		{"C9", 1, "股下:78"},
		{"C9", 2, "股下:80"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	svc := buildService(t, nil)
	res, err := svc.Process(context.Background(), "sizes.xlsx", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(res.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(res.Tables))
	}
	got := res.Tables[0]
	if got.Code != "C9" || got.SizeCode != "01" {
		t.Errorf("table identity = %s/%s", got.Code, got.SizeCode)
	}
	if !reflect.DeepEqual(got.Header, []string{"尺码", "内长"}) {
		t.Errorf("Header = %v", got.Header)
	}
	if !reflect.DeepEqual(got.Rows, [][]string{{"I", "78"}, {"II", "80"}}) {
		t.Errorf("Rows = %v", got.Rows)
	}
}

func TestProcess_Errors(t *testing.T) {
	svc := buildService(t, map[string]string{"PIPELINE_ON_DUPLICATE": "error"})

	tests := []struct {
		name     string
		fileName string
		body     string
		wantErr  error
		wantCode string
	}{
		{"unsupported", "sizes.txt", "x", nil, "FILE002"},
		{"missing column", "sizes.csv", "品番,SZ\nA,S\n", core.ErrMissingOrAmbiguousColumns, "COL001"},
		{"empty", "sizes.csv", "品番,SZ,採寸\n", core.ErrEmptySheet, "SHT001"},
		{"bad token", "sizes.csv", "品番,SZ,採寸\nA,S,着丈70\n", core.ErrInvalidMeasurementToken, "MEA002"},
		{"duplicate", "sizes.csv", "品番,SZ,採寸\nA,S,着丈:70\nA,S,着丈:71\n", core.ErrDuplicateRow, "ROW001"},
		{"mismatch", "sizes.csv", "品番,SZ,採寸\nA,S,着丈:70\nA,M,肩幅:40\n", core.ErrMeasurementMismatch, "ROW002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(context.Background(), tt.fileName, strings.NewReader(tt.body))
			if err == nil {
				t.Fatal("Process() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if code := core.MapError(err).Code; code != tt.wantCode {
				t.Errorf("MapError code = %s, want %s (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestProcess_FileTooLarge(t *testing.T) {
	svc := buildService(t, map[string]string{"UPLOAD_MAX_FILE_SIZE": "16"})

	_, err := svc.Process(context.Background(), "sizes.csv", strings.NewReader(sampleCSV))
	if code := core.MapError(err).Code; code != "FILE001" {
		t.Errorf("MapError code = %s, want FILE001 (err: %v)", code, err)
	}
}

func TestProcess_Busy(t *testing.T) {
	svc := buildService(t, map[string]string{
		"UPLOAD_MAX_CONCURRENT": "1",
		"UPLOAD_MAX_WAIT_TIME":  "20ms",
	})

	if !svc.Limiter().TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer svc.Limiter().Release()

	_, err := svc.Process(context.Background(), "sizes.csv", strings.NewReader(sampleCSV))
	if !errors.Is(err, ErrTooManyRuns) {
		t.Fatalf("error = %v, want ErrTooManyRuns", err)
	}
	if code := core.MapError(err).Code; code != "RUN001" {
		t.Errorf("MapError code = %s, want RUN001", code)
	}
}

type fakeTranslator struct {
	err   error
	calls [][]string
	mu    sync.Mutex
}

func (f *fakeTranslator) Name() string { return "fake" }

func (f *fakeTranslator) Translate(_ context.Context, texts []string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, texts)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i] = "zh:" + s
	}
	return out, nil
}

func newTestService(t *testing.T, tr translate.Translator, src glossary.Source) *Service {
	t.Helper()
	pipelineOpts, err := PipelineOptions(testConfig(t, nil).Pipeline)
	if err != nil {
		t.Fatalf("PipelineOptions: %v", err)
	}
	pipelineOpts.TranslateMisses = tr != nil
	return New(context.Background(), Options{
		Pipeline:   pipelineOpts,
		Source:     src,
		Translator: tr,
		Logger:     discardLogger(),
	})
}

func TestProcess_RemoteFallback(t *testing.T) {
	tr := &fakeTranslator{}
	svc := newTestService(t, tr, glossary.EmbeddedSource{})

	body := "品番,SZ,採寸\nA,S,着丈:70 袖口幅:12\nB,S,袖口幅:13\n"
	res, err := svc.Process(context.Background(), "sizes.csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(tr.calls) != 1 || !reflect.DeepEqual(tr.calls[0], []string{"袖口幅"}) {
		t.Errorf("translator calls = %v, want one batch of [袖口幅]", tr.calls)
	}
	if res.RemoteTranslated != 1 {
		t.Errorf("RemoteTranslated = %d, want 1", res.RemoteTranslated)
	}
	if got := res.Tables[0].Header; !reflect.DeepEqual(got, []string{"尺码", "衣长", "zh:袖口幅"}) {
		t.Errorf("Header = %v", got)
	}
}

func TestGlossary_RemoteName(t *testing.T) {
	if got := newTestService(t, &fakeTranslator{}, glossary.EmbeddedSource{}).Glossary().Remote; got != "fake" {
		t.Errorf("Remote = %q, want fake", got)
	}
	if got := newTestService(t, nil, glossary.EmbeddedSource{}).Glossary().Remote; got != "none" {
		t.Errorf("Remote = %q, want none", got)
	}
}

func TestProcess_RemoteFailureDegrades(t *testing.T) {
	tr := &fakeTranslator{err: &translate.FailedError{Message: "quota"}}
	svc := newTestService(t, tr, glossary.EmbeddedSource{})

	res, err := svc.Process(context.Background(), "sizes.csv",
		strings.NewReader("品番,SZ,採寸\nA,S,着丈:70 袖口幅:12\n"))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := res.Tables[0].Header; !reflect.DeepEqual(got, []string{"尺码", "衣长", "袖口幅"}) {
		t.Errorf("Header = %v", got)
	}
	if !strings.HasSuffix(res.RemoteError, ": quota") {
		t.Errorf("RemoteError = %q, want upstream message quota", res.RemoteError)
	}
}

func TestTranslate_NoProvider(t *testing.T) {
	svc := buildService(t, nil)

	_, err := svc.Translate(context.Background(), []string{"肩幅"})
	if !errors.Is(err, translate.ErrRemoteTranslationUnavailable) {
		t.Errorf("error = %v, want ErrRemoteTranslationUnavailable", err)
	}
	if info := svc.Glossary(); info.Remote != "none" || info.Origin != "embedded" {
		t.Errorf("Glossary() = %+v", info)
	}
}

type fakeStore struct {
	mu    sync.Mutex
	terms map[string]string
}

func (s *fakeStore) Name() string { return "fake-store" }

func (s *fakeStore) Import(_ context.Context, terms []glossary.Term) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terms == nil {
		s.terms = map[string]string{}
	}
	for _, t := range terms {
		s.terms[t.Source] = t.Target
	}
	return int64(len(terms)), nil
}

func (s *fakeStore) Load(context.Context) (*glossary.Glossary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return glossary.New(s.terms, s.Name()), nil
}

type fakePublisher struct {
	published *glossary.Glossary
}

func (p *fakePublisher) Publish(_ context.Context, g *glossary.Glossary) error {
	p.published = g
	return nil
}

func TestImportGlossary(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := New(context.Background(), Options{
		Source:    glossary.NewChain(discardLogger(), store, glossary.EmbeddedSource{}),
		Store:     store,
		Publisher: pub,
		Logger:    discardLogger(),
	})

	if got := svc.Glossary().Origin; got != "embedded" {
		t.Fatalf("initial origin = %q, want embedded", got)
	}

	n, err := svc.ImportGlossary(context.Background(), strings.NewReader("source,target\n袖口幅,袖口宽\n"))
	if err != nil {
		t.Fatalf("ImportGlossary() error = %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d, want 1", n)
	}

	info := svc.Glossary()
	if info.Origin != "fake-store" || info.Terms != 1 {
		t.Errorf("Glossary() after import = %+v", info)
	}
	if got, _ := svc.Resolver().Lookup("袖口幅"); got != "袖口宽" {
		t.Errorf("Lookup(袖口幅) = %q", got)
	}
	if pub.published == nil || pub.published.Len() != 1 {
		t.Error("glossary was not published")
	}
}

func TestImportGlossary_NoStore(t *testing.T) {
	svc := buildService(t, nil)
	_, err := svc.ImportGlossary(context.Background(), strings.NewReader("source,target\na,b\n"))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
}

func TestReload_KeepsInFlightResolver(t *testing.T) {
	store := &fakeStore{terms: map[string]string{"着丈": "old"}}
	svc := New(context.Background(), Options{Source: store, Store: store, Logger: discardLogger()})

	before := svc.Resolver()
	store.Import(context.Background(), []glossary.Term{{Source: "着丈", Target: "new"}})

	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got, _ := before.Lookup("着丈"); got != "old" {
		t.Errorf("old resolver changed: %q", got)
	}
	if got, _ := svc.Resolver().Lookup("着丈"); got != "new" {
		t.Errorf("new resolver = %q, want new", got)
	}
}

func TestProcess_Timeout(t *testing.T) {
	svc := buildService(t, map[string]string{"UPLOAD_TIMEOUT": "1ns"})
	time.Sleep(time.Millisecond)

	_, err := svc.Process(context.Background(), "sizes.csv", strings.NewReader(sampleCSV))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}
