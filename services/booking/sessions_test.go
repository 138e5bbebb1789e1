package booking

import (
	"context"
	"errors"
	"testing"

	"fikerless/models"
)

func confirmedSession(t *testing.T, svc *DefaultBookingService, avail *fakeAvailabilityRepo) *models.Session {
	t.Helper()
	seedAvailability(t, svc, avail, 60, 0, mondayRule("09:00", "11:00"))
	req := createTestRequest(t, svc, "user-1", "09:00")
	if _, err := svc.SubmitPayment(context.Background(), req.ID, "https://cdn.example.com/p.png"); err != nil {
		t.Fatalf("SubmitPayment: %v", err)
	}
	session, err := svc.Approve(context.Background(), req.ID, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return session
}

func TestCompleteSession(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)

	completed, err := svc.CompleteSession(context.Background(), session.ID, "went well")
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if completed.Status != models.SessionCompleted {
		t.Fatalf("want COMPLETED, got %s", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Fatal("want completedAt recorded")
	}
	if completed.Notes != "went well" {
		t.Fatalf("want notes recorded, got %q", completed.Notes)
	}
}

func TestCancelSession_RequiresReason(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)

	_, err := svc.CancelSession(context.Background(), session.ID, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError for empty reason, got %v", err)
	}

	cancelled, err := svc.CancelSession(context.Background(), session.ID, "specialist unavailable")
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if cancelled.Status != models.SessionCancelled {
		t.Fatalf("want CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("want cancelledAt recorded")
	}
}

func TestMarkNoShow(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)

	noShow, err := svc.MarkNoShow(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if noShow.Status != models.SessionNoShow {
		t.Fatalf("want NO_SHOW, got %s", noShow.Status)
	}
}

func TestSessionTransitions_TerminalStatesAreFinal(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)

	if _, err := svc.CompleteSession(context.Background(), session.ID, ""); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	cases := []struct {
		name string
		call func() error
	}{
		{"complete again", func() error {
			_, err := svc.CompleteSession(context.Background(), session.ID, "")
			return err
		}},
		{"cancel after complete", func() error {
			_, err := svc.CancelSession(context.Background(), session.ID, "late")
			return err
		}},
		{"no-show after complete", func() error {
			_, err := svc.MarkNoShow(context.Background(), session.ID)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var serr *InvalidStateError
			if !errors.As(err, &serr) {
				t.Fatalf("want InvalidStateError, got %v", err)
			}
		})
	}
}

func TestSessionTransition_NotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService(testNow)
	_, err := svc.CompleteSession(context.Background(), "nope", "")
	var nerr *NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestAttachSessionFile_WhileConfirmed(t *testing.T) {
	svc, avail, _, sessions, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)

	updated, err := svc.AttachSessionFile(context.Background(), session.ID, "/tmp/notes.pdf")
	if err != nil {
		t.Fatalf("AttachSessionFile: %v", err)
	}
	if updated.SessionFile == "" {
		t.Fatal("want session file URL set")
	}

	stored, err := sessions.GetByID(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.SessionFile != updated.SessionFile {
		t.Fatalf("want stored file %q, got %q", updated.SessionFile, stored.SessionFile)
	}
}

func TestAttachSessionFile_AfterCompletion(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)
	if _, err := svc.CompleteSession(context.Background(), session.ID, ""); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	if _, err := svc.AttachSessionFile(context.Background(), session.ID, "/tmp/notes.pdf"); err != nil {
		t.Fatalf("attach to completed session: %v", err)
	}
}

func TestAttachSessionFile_CancelledSessionRejected(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)
	if _, err := svc.CancelSession(context.Background(), session.ID, "moved"); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}

	_, err := svc.AttachSessionFile(context.Background(), session.ID, "/tmp/notes.pdf")
	var serr *InvalidStateError
	if !errors.As(err, &serr) {
		t.Fatalf("want InvalidStateError attaching to cancelled session, got %v", err)
	}
}

func TestAttachSessionFile_UploadFailure(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)
	svc.Storage = &fakeStorage{failErr: errors.New("cloud down")}

	if _, err := svc.AttachSessionFile(context.Background(), session.ID, "/tmp/notes.pdf"); err == nil {
		t.Fatal("want error when upload fails")
	}
}

func TestListSessions(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)
	session := confirmedSession(t, svc, avail)

	mine, err := svc.ListUserSessions(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListUserSessions: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != session.ID {
		t.Fatalf("want the confirmed session listed for user, got %+v", mine)
	}

	theirs, err := svc.ListSpecialistSessions(context.Background(), "spec-1")
	if err != nil {
		t.Fatalf("ListSpecialistSessions: %v", err)
	}
	if len(theirs) != 1 || theirs[0].ID != session.ID {
		t.Fatalf("want the confirmed session listed for specialist, got %+v", theirs)
	}
}
