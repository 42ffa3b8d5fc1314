package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"ArmeriaCorpAdmin/api"
	"ArmeriaCorpAdmin/api/constants"
	"ArmeriaCorpAdmin/internal/config"
	"ArmeriaCorpAdmin/internal/logger"
	"ArmeriaCorpAdmin/internal/validation"
)

// Expected roster columns, in order. The header row is skipped.
// first_name | last_name | document | email | phone | import_group_id
const uploadColumns = 6

type rosterRow struct {
	FirstName     string
	LastName      string
	Document      string
	Email         string
	Phone         string
	ImportGroupID string
}

// UploadHandler handles POST /clients/upload: a multipart .xls or .xlsx
// roster file. The same file uploaded twice is rejected by fingerprint.
// Rows are validated before anything is written; one bad row fails the
// whole batch so a half-imported roster never exists.
func (s *Service) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	userID, err := validation.ExtractUserID(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrMissingUserID)
		return
	}
	if err := r.ParseMultipartForm(config.UploadMaxBytes); err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
		return
	}
	if len(data) == 0 {
		api.WriteError(w, http.StatusBadRequest, constants.ErrEmptyFile)
		return
	}

	if dup, first := s.registry.Remember(data, header.Filename); dup {
		api.WriteError(w, http.StatusConflict, fmt.Sprintf(constants.ErrDuplicateUpload, first))
		return
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		rows, err = readXLSX(data)
	case ".xls":
		rows, err = readXLS(data)
	default:
		api.WriteError(w, http.StatusBadRequest, constants.ErrInvalidFileFormat)
		return
	}
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
		return
	}
	if len(rows) < 2 {
		api.WriteError(w, http.StatusBadRequest, constants.ErrEmptyFile)
		return
	}

	parsed, err := parseRosterRows(rows[1:])
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.insertClients(r.Context(), parsed); err != nil {
		logger.Audit("Roster upload by %s failed at insert: %v", userID, err)
		api.WriteError(w, http.StatusInternalServerError, constants.ErrDB)
		return
	}

	logger.Audit("User %s uploaded roster %s: %d clients", userID, header.Filename, len(parsed))
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf(constants.SuccessUploaded, len(parsed)),
	})
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	rows := wb.ReadAllCells(config.UploadBatchSize * 10)
	return rows, nil
}

func parseRosterRows(rows [][]string) ([]rosterRow, error) {
	parsed := make([]rosterRow, 0, len(rows))
	for i, row := range rows {
		cells := make([]string, uploadColumns)
		for j := 0; j < uploadColumns && j < len(row); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		allEmpty := true
		for _, c := range cells {
			if c != "" {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			continue
		}
		// Row numbers are 1-based and count the header.
		rowNum := i + 2
		if cells[1] == "" {
			return nil, fmt.Errorf(constants.ErrInvalidDataRow, rowNum, "last name is required")
		}
		if cells[2] == "" {
			return nil, fmt.Errorf(constants.ErrInvalidDataRow, rowNum, "document is required")
		}
		if cells[3] != "" && !strings.Contains(cells[3], "@") {
			return nil, fmt.Errorf(constants.ErrInvalidDataRow, rowNum, "invalid email")
		}
		parsed = append(parsed, rosterRow{
			FirstName:     cells[0],
			LastName:      cells[1],
			Document:      cells[2],
			Email:         cells[3],
			Phone:         cells[4],
			ImportGroupID: cells[5],
		})
	}
	if len(parsed) == 0 {
		return nil, errors.New(constants.ErrEmptyFile)
	}
	return parsed, nil
}

// insertClients writes the batch inside one transaction.
func (s *Service) insertClients(ctx context.Context, rows []rosterRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin roster insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO clients (client_id, first_name, last_name, document, email, phone, import_group_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), now())
	`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, query,
			uuid.NewString(), row.FirstName, row.LastName, row.Document,
			row.Email, row.Phone, row.ImportGroupID,
		); err != nil {
			return fmt.Errorf("insert client %s: %w", row.Document, err)
		}
	}
	return tx.Commit(ctx)
}
