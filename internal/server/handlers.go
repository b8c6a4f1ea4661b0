package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lex-research/internal/export"
	"github.com/sells-group/lex-research/internal/report"
	"github.com/sells-group/lex-research/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type researchRequest struct {
	Jurisdiction string   `json:"jurisdiction"`
	Questions    []string `json:"questions"`
}

type researchResponse struct {
	Jurisdiction string `json:"jurisdiction"`
	Report       string `json:"report"`
	Truncated    bool   `json:"truncated"`
}

type exportRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Report       string `json:"report"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "ok",
		"credential_configured": s.configured(),
	})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	questions := s.catalog.Questions()
	out := make([]map[string]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, map[string]string{"id": q.ID, "title": q.Title})
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": out})
}

func (s *Server) handleJurisdictions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jurisdictions": s.catalog.Jurisdictions()})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "请求格式错误"})
		return
	}

	var run *store.Run
	if s.audit != nil {
		created, err := s.audit.CreateRun(r.Context(), req.Jurisdiction, req.Questions)
		if err != nil {
			zap.L().Warn("server: audit create failed", zap.Error(err))
		} else {
			run = created
		}
	}

	result, err := s.builder.Build(r.Context(), req.Jurisdiction, req.Questions)
	if err != nil {
		s.finishRun(r, run, store.RunStatusFailed, 0, err.Error())
		status, msg := mapBuildError(err, req.Jurisdiction)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	s.finishRun(r, run, store.RunStatusComplete, len([]rune(result.Text)), "")
	writeJSON(w, http.StatusOK, researchResponse{
		Jurisdiction: result.Jurisdiction,
		Report:       result.Text,
		Truncated:    result.Truncated,
	})
}

func (s *Server) handleExportDocx(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.WriteDocx, export.Filename,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
}

func (s *Server) handleExportXlsx(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.WriteXlsx, export.XlsxFilename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (s *Server) handleExport(
	w http.ResponseWriter,
	r *http.Request,
	write func([]report.Block) ([]byte, error),
	filename func(string, time.Time) string,
	contentType string,
) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "请求格式错误"})
		return
	}
	if strings.TrimSpace(req.Report) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "报告内容不能为空"})
		return
	}

	blocks, err := export.ParseReport(req.Report)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "报告格式无效"})
		return
	}

	data, err := write(blocks)
	if err != nil {
		zap.L().Error("server: export failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "导出文档失败"})
		return
	}

	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = "报告"
	}
	name := filename(jurisdiction, time.Now())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Warn("server: write response", zap.Error(err))
	}
}

func (s *Server) finishRun(r *http.Request, run *store.Run, status store.RunStatus, chars int, msg string) {
	if s.audit == nil || run == nil {
		return
	}
	if err := s.audit.CompleteRun(r.Context(), run.ID, status, chars, msg); err != nil {
		zap.L().Warn("server: audit complete failed", zap.Error(err))
	}
}

func mapBuildError(err error, jurisdiction string) (int, string) {
	switch {
	case errors.Is(err, report.ErrJurisdictionRequired):
		return http.StatusBadRequest, "请选择司法辖区"
	case errors.Is(err, report.ErrUnknownJurisdiction):
		return http.StatusBadRequest, "不支持的司法辖区: " + jurisdiction
	case errors.Is(err, report.ErrNoQuestions):
		return http.StatusBadRequest, "请选择问题"
	case errors.Is(err, report.ErrNoDocuments):
		return http.StatusNotFound, "未找到" + jurisdiction + "的法律法规文件，请检查知识库目录"
	default:
		zap.L().Error("server: build failed", zap.Error(err))
		return http.StatusInternalServerError, "生成报告失败"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}
