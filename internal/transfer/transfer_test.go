package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"grc-center/internal/models"
)

func TestExportRisks(t *testing.T) {
	inherent, residual := 20.0, 8.0
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	risks := []models.Risk{
		{
			Code: "RISK-00001", Title: "Phishing", Category: models.CategoryTechnology, Status: models.RiskOpen,
			Likelihood: models.LikelihoodLikely, Impact: models.ImpactCatastrophic,
			InherentRiskScore: &inherent, ResidualRiskScore: &residual, Owner: "CISO",
			CreatedAt: created, UpdatedAt: created,
		},
		{Code: "RISK-00002", Title: "Unscored", Category: models.CategoryFinancial, Status: models.RiskOpen},
	}

	buf, err := ExportRisks(risks)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RiskSheet}, f.GetSheetList())
	rows, err := f.GetRows(RiskSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, RiskExportColumns, rows[0])
	assert.Equal(t, "RISK-00001", rows[1][0])
	assert.Equal(t, "4", rows[1][5])
	assert.Equal(t, "20", rows[1][7])
	assert.Equal(t, "Critical", rows[1][9])
	assert.Equal(t, "", rows[2][9])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "risk_register_20240615.xlsx", ExportFilename(time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)))
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadRiskWorkbook(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Title", " CATEGORY ", "Likelihood", "Impact", "Owner"},
		{"Phishing", "Technology", "Likely", "Major", "CISO"},
		{},
		{"Fraud", "financial", "3", "5"},
	})

	rows, err := ReadRiskWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "Phishing", rows[0].Get("Title"))
	assert.Equal(t, "Technology", rows[0].Get("Category"))
	assert.Equal(t, 4, rows[1].Row)
	assert.Equal(t, "", rows[1].Get("Owner"))
	assert.Equal(t, "", rows[1].Get("Missing Column"))
}

func TestReadRiskWorkbookRejectsGarbage(t *testing.T) {
	_, err := ReadRiskWorkbook(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "evidence"))
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("SOC2 access review")
	stored, err := s.Put(ctx, "../../reports/review.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, HashContent(data), stored.Hash)
	assert.Len(t, stored.Hash, 64)
	assert.Equal(t, int64(len(data)), stored.Size)
	assert.Equal(t, "review.pdf", stored.Name)
	assert.Equal(t, stored.Hash+"_review.pdf", filepath.Base(stored.Location))

	again, err := s.Put(ctx, "review.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, stored.Location, again.Location)

	got, err := s.Get(ctx, stored.Location)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = s.Get(ctx, filepath.Join(dir, "elsewhere"))
	assert.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "evidence"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	windows, err := s.Put(ctx, `C:\audit\q1\summary.pdf`, []byte("Q1 summary"))
	require.NoError(t, err)
	assert.Equal(t, "summary.pdf", windows.Name)
	assert.Equal(t, windows.Hash+"_"+windows.Name, filepath.Base(windows.Location))

	_, err = s.Put(ctx, "", data)
	assert.ErrorIs(t, err, ErrEmptyFilename)
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := newS3Storage(fake, "grc-evidence", "uploads")
	ctx := context.Background()

	data := []byte("firewall config")
	stored, err := s.Put(ctx, "fw.conf", data)
	require.NoError(t, err)
	assert.Equal(t, "s3://grc-evidence/uploads/"+stored.Hash+"_fw.conf", stored.Location)
	assert.Equal(t, "fw.conf", stored.Name)

	got, err := s.Get(ctx, stored.Location)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = s.Get(ctx, "s3://other-bucket/x")
	assert.Error(t, err)

	fake.putErr = errors.New("AccessDenied")
	_, err = s.Put(ctx, "fw.conf", data)
	assert.ErrorContains(t, err, "AccessDenied")
}
