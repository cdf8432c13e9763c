package handler

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/mathquiz-api/internal/handler/dto"
	"github.com/yourusername/mathquiz-api/internal/handler/helper"
	"github.com/yourusername/mathquiz-api/internal/service"
)

// PeriodContextKey — ключ контекста для параметра period
const PeriodContextKey = "period"

// DefaultPeriodDays — период дневной статистики по умолчанию
const DefaultPeriodDays = 30

const historySheetName = "Geçmiş"

var historyHeaders = []string{"Tarih", "Sınıf", "Konu", "Soru", "Cevabım", "Doğru Cevap", "Sonuç", "Oturum"}

// ProgressHandler обрабатывает запросы статистики и прогресса
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler создает обработчик прогресса
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// UserStats — GET /api/user/stats
func (h *ProgressHandler) UserStats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	stats, err := h.progressService.UserStats(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "ProgressHandler.UserStats", err)
		return
	}
	helper.Success(c, http.StatusOK, stats)
}

// Daily — GET /api/progress/daily?period=30
func (h *ProgressHandler) Daily(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	period := service.ClampPeriod(c.GetInt(PeriodContextKey))

	resp, err := h.progressService.Daily(c.Request.Context(), userID, period)
	if err != nil {
		handleServiceError(c, "ProgressHandler.Daily", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Topics — GET /api/progress/topics
func (h *ProgressHandler) Topics(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	topics, err := h.progressService.Topics(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "ProgressHandler.Topics", err)
		return
	}
	helper.Success(c, http.StatusOK, topics)
}

// Weekly — GET /api/progress/weekly
func (h *ProgressHandler) Weekly(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	weeks, err := h.progressService.Weekly(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "ProgressHandler.Weekly", err)
		return
	}
	helper.Success(c, http.StatusOK, weeks)
}

// Detailed — GET /api/progress/detailed
func (h *ProgressHandler) Detailed(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	days, err := h.progressService.Detailed(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "ProgressHandler.Detailed", err)
		return
	}
	helper.Success(c, http.StatusOK, days)
}

// WrongAnswers — GET /api/progress/wrong-answers
func (h *ProgressHandler) WrongAnswers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.progressService.WrongAnswers(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "ProgressHandler.WrongAnswers", err)
		return
	}
	helper.Success(c, http.StatusOK, resp)
}

// Export выгружает историю ответов в CSV или Excel
// GET /api/progress/export?format=csv|xlsx
func (h *ProgressHandler) Export(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		helper.Error(c, http.StatusBadRequest, "Desteklenmeyen format", "validation_error")
		return
	}

	rows, err := h.progressService.History(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, "ProgressHandler.Export", err)
		return
	}

	filename := fmt.Sprintf("mathquiz_history_%d_%s", userID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
		if err := writeHistoryXLSX(c.Writer, rows); err != nil {
			log.Printf("[ProgressHandler.Export] Ошибка записи Excel для пользователя ID=%d: %v", userID, err)
		}
	default:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
		if err := writeHistoryCSV(c.Writer, rows); err != nil {
			log.Printf("[ProgressHandler.Export] Ошибка записи CSV для пользователя ID=%d: %v", userID, err)
		}
	}
}

// historyRecord превращает строку истории в ячейки экспорта
func historyRecord(r dto.HistoryRow) []string {
	result := "Yanlış"
	if r.IsCorrect {
		result = "Doğru"
	}
	return []string{
		r.AnsweredAt.Format("2006-01-02 15:04"),
		strconv.Itoa(r.Grade),
		sanitizeForExcel(r.Topic),
		sanitizeForExcel(r.QuestionText),
		sanitizeForExcel(r.UserAnswer),
		sanitizeForExcel(r.CorrectAnswer),
		result,
		r.SessionID,
	}
}

// writeHistoryCSV пишет историю в CSV с BOM для корректного UTF-8 в Excel
func writeHistoryCSV(w io.Writer, rows []dto.HistoryRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(historyHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(historyRecord(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// writeHistoryXLSX пишет историю в Excel через StreamWriter
func writeHistoryXLSX(w io.Writer, rows []dto.HistoryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(historySheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}

	header := make([]interface{}, len(historyHeaders))
	for i, h := range historyHeaders {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range rows {
		record := historyRecord(r)
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		// Класс пишется числом
		row[1] = r.Grade
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
