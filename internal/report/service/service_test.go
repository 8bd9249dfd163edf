package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"olhopix/internal/report/models"
	"olhopix/internal/report/service/mocks"
	"olhopix/internal/report/store"
	id "olhopix/pkg/domain"
	dErrors "olhopix/pkg/domain-errors"
	"olhopix/pkg/platform/audit"
	"olhopix/pkg/platform/sentinel"
	"olhopix/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	mockAudit *mocks.MockAuditPublisher
	service   *Service

	emitted []audit.Event
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.emitted = nil

	s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.emitted = append(s.emitted, event)
			return nil
		}).AnyTimes()

	svc, err := New(s.mockStore, WithAuditPublisher(s.mockAudit))
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validInput() models.SubmitInput {
	return models.SubmitInput{
		KeyType:            "email",
		KeyValue:           "joao@mail.com",
		AccountHolderName:  "João Silva",
		TaxID:              "11122233344",
		BankName:           "Banco A",
		PoliceReportNumber: "BO-2025-123",
		Evidence:           []byte("%PDF-1.4 evidence"),
	}
}

// report fabricates one store row. Rows built later in a test get earlier
// timestamps, matching the store's newest-first contract.
func report(groupKey string, keyType models.KeyType, keyValue, name, taxID, bank string) *models.Report {
	return &models.Report{
		ID:                id.NewReportID(),
		GroupKey:          groupKey,
		KeyType:           keyType,
		KeyValue:          keyValue,
		AccountHolderName: name,
		TaxID:             taxID,
		BankName:          bank,
	}
}

func (s *ServiceSuite) TestSubmit() {
	ctx := context.Background()

	s.Run("persists report with derived group key", func() {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(ctx, now)

		var storedEvidence []byte
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r *models.Report, evidence []byte) error {
				storedEvidence = evidence
				return nil
			})

		got, err := s.service.Submit(ctx, validInput())
		s.Require().NoError(err)

		s.Equal("joão silva_11122233344", got.GroupKey)
		s.Equal(models.KeyTypeEmail, got.KeyType)
		s.False(got.ID.IsNil())
		s.Equal(now, got.CreatedAt)
		s.Equal([]byte("%PDF-1.4 evidence"), storedEvidence)
		s.Require().Len(s.emitted, 1)
		s.Equal("report_submitted", s.emitted[0].Action)
		s.Equal(got.ID.String(), s.emitted[0].Subject)
	})

	s.Run("group key ignores the pix key fields", func() {
		var keys []string
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, r *models.Report, _ []byte) error {
				keys = append(keys, r.GroupKey)
				return nil
			}).Times(2)

		a := validInput()
		_, err := s.service.Submit(ctx, a)
		s.Require().NoError(err)

		b := validInput()
		b.KeyType = "random"
		b.KeyValue = "k-9f2"
		b.AccountHolderName = " JOÃO SILVA "
		_, err = s.service.Submit(ctx, b)
		s.Require().NoError(err)

		s.Equal(keys[0], keys[1])
	})

	s.Run("validation failures never reach the store", func() {
		in := validInput()
		in.Evidence = nil
		_, err := s.service.Submit(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		in = validInput()
		in.KeyType = "carrier-pigeon"
		_, err = s.service.Submit(ctx, in)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("storage failure surfaces as internal", func() {
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(sentinel.ErrUnavailable)

		_, err := s.service.Submit(ctx, validInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestSearch() {
	ctx := context.Background()

	s.Run("passes the filter through and returns rows as-is", func() {
		rows := []*models.Report{report("g", models.KeyTypeEmail, "a@b", "N", "1", "B")}
		s.mockStore.EXPECT().
			Search(gomock.Any(), models.SearchFilter{FreeText: "banco", KeyType: models.KeyTypeEmail}).
			Return(rows, nil)

		got, err := s.service.Search(ctx, models.SearchFilter{FreeText: " banco ", KeyType: "email"})
		s.Require().NoError(err)
		s.Equal(rows, got)
	})

	s.Run("invalid key type filter is a validation error", func() {
		_, err := s.service.Search(ctx, models.SearchFilter{KeyType: "iban"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure surfaces as internal", func() {
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return(nil, sentinel.ErrUnavailable)

		_, err := s.service.Search(ctx, models.SearchFilter{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestSearchGroupsAggregation() {
	ctx := context.Background()

	s.Run("exemplar excludes random keys and collapses duplicates", func() {
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]*models.Report{
			report("g1", models.KeyTypeRandom, "x@y", "João Silva", "111", "Banco A"),
			report("g1", models.KeyTypeEmail, "a@b", "João Silva", "111", "Banco A"),
			report("g1", models.KeyTypeEmail, "a@b", "João Silva", "111", "Banco A"),
		}, nil)

		groups, err := s.service.SearchGroups(ctx, models.SearchFilter{})
		s.Require().NoError(err)
		s.Require().Len(groups, 1)
		s.Equal("a@b", groups[0].ExemplarKeys)
		s.Equal(3, groups[0].TotalReports)
	})

	s.Run("all-random group yields empty exemplar", func() {
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]*models.Report{
			report("g1", models.KeyTypeRandom, "k-1", "João Silva", "111", "Banco A"),
			report("g1", models.KeyTypeRandom, "k-2", "João Silva", "111", "Banco A"),
		}, nil)

		groups, err := s.service.SearchGroups(ctx, models.SearchFilter{})
		s.Require().NoError(err)
		s.Require().Len(groups, 1)
		s.Empty(groups[0].ExemplarKeys)
		s.Equal(2, groups[0].TotalReports)
	})

	s.Run("exemplar keeps newest-first first-occurrence order", func() {
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]*models.Report{
			report("g1", models.KeyTypePhone, "11999990000", "João Silva", "111", "Banco A"),
			report("g1", models.KeyTypeEmail, "a@b", "João Silva", "111", "Banco A"),
			report("g1", models.KeyTypePhone, "11999990000", "João Silva", "111", "Banco A"),
		}, nil)

		groups, err := s.service.SearchGroups(ctx, models.SearchFilter{})
		s.Require().NoError(err)
		s.Require().Len(groups, 1)
		s.Equal("11999990000\na@b", groups[0].ExemplarKeys)
	})

	s.Run("identity fields come from the newest member", func() {
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).Return([]*models.Report{
			report("g1", models.KeyTypeEmail, "a@b", "João Silva", "111", "Banco B"),
			report("g1", models.KeyTypeEmail, "c@d", "joão silva", "111", "Banco A"),
		}, nil)

		groups, err := s.service.SearchGroups(ctx, models.SearchFilter{})
		s.Require().NoError(err)
		s.Require().Len(groups, 1)
		s.Equal("João Silva", groups[0].AccountHolderName)
		s.Equal("Banco B", groups[0].BankName)
	})

	s.Run("orders by count descending then group key ascending", func() {
		rows := []*models.Report{
			report("gc", models.KeyTypeEmail, "c@d", "C", "3", "B"),
		}
		for range 5 {
			rows = append(rows,
				report("gz", models.KeyTypeEmail, "z@z", "Z", "26", "B"),
				report("ga", models.KeyTypeEmail, "a@b", "A", "1", "B"))
		}
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).Return(rows, nil)

		groups, err := s.service.SearchGroups(ctx, models.SearchFilter{})
		s.Require().NoError(err)
		s.Require().Len(groups, 3)
		s.Equal("ga", groups[0].GroupKey)
		s.Equal(5, groups[0].TotalReports)
		s.Equal("gz", groups[1].GroupKey)
		s.Equal(5, groups[1].TotalReports)
		s.Equal("gc", groups[2].GroupKey)
		s.Equal(1, groups[2].TotalReports)
	})

	s.Run("no matching reports is an empty result, not an error", func() {
		s.mockStore.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, nil)

		groups, err := s.service.SearchGroups(ctx, models.SearchFilter{})
		s.Require().NoError(err)
		s.Empty(groups)
	})
}

func (s *ServiceSuite) TestAttachment() {
	ctx := context.Background()

	s.Run("returns stored bytes unmodified", func() {
		reportID := id.NewReportID()
		blob := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF}
		s.mockStore.EXPECT().FindEvidence(gomock.Any(), reportID).Return(blob, nil)

		got, err := s.service.Attachment(ctx, reportID)
		s.Require().NoError(err)
		s.Equal(blob, got)
		s.Require().Len(s.emitted, 1)
		s.Equal("attachment_downloaded", s.emitted[0].Action)
	})

	s.Run("unknown report is not found", func() {
		s.emitted = nil
		reportID := id.NewReportID()
		s.mockStore.EXPECT().FindEvidence(gomock.Any(), reportID).
			Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Attachment(ctx, reportID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Empty(s.emitted)
	})
}

// TestEndToEndGrouping runs the full ingest-then-aggregate flow against the
// real in-memory store: two reports for the same holder, one via email key
// and one via a random key, collapse into a single group.
func TestEndToEndGrouping(t *testing.T) {
	ctx := context.Background()
	svc, err := New(store.New())
	if err != nil {
		t.Fatal(err)
	}

	submit := func(name, taxID, keyType, keyValue string, at time.Time) *models.Report {
		t.Helper()
		r, err := svc.Submit(requestcontext.WithTime(ctx, at), models.SubmitInput{
			KeyType:            keyType,
			KeyValue:           keyValue,
			AccountHolderName:  name,
			TaxID:              taxID,
			BankName:           "Banco A",
			PoliceReportNumber: "BO-2025-123",
			Evidence:           []byte("evidence " + keyValue),
		})
		if err != nil {
			t.Fatalf("submit %s: %v", keyValue, err)
		}
		return r
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := submit("João Silva", "11122233344", "email", "joao@mail.com", base)
	submit(" joão silva ", "11122233344", "random", "k-9f2", base.Add(time.Minute))

	groups, err := svc.SearchGroups(ctx, models.SearchFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if groups[0].TotalReports != 2 {
		t.Errorf("total_reports = %d, want 2", groups[0].TotalReports)
	}
	if groups[0].ExemplarKeys != "joao@mail.com" {
		t.Errorf("exemplar = %q, want %q", groups[0].ExemplarKeys, "joao@mail.com")
	}

	blob, err := svc.Attachment(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != "evidence joao@mail.com" {
		t.Errorf("attachment round-trip mismatch: %q", blob)
	}
}
