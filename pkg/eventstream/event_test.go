package eventstream_test

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/petalhealth/petal/pkg/eventstream"
	"github.com/petalhealth/petal/pkg/history"
)

func TestEventstream(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Eventstream Suite")
}

var _ = Describe("Event", func() {
	It("marshals TurnPersistedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.TurnPersistedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTurnPersisted,
			EventID:       "evt_123",
			EmittedAt:     now,
			UserID:        "u1",
			Turn: history.Turn{
				ID:      42,
				Role:    history.RoleUser,
				Content: "hello",
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("user_id"))
		Expect(got).To(HaveKey("turn"))
	})

	It("assigns unique event ids to constructed events", func() {
		first := eventstream.NewTurnEvent("u1", history.Turn{Role: history.RoleUser, Content: "hi"})
		second := eventstream.NewTurnEvent("u1", history.Turn{Role: history.RoleUser, Content: "hi"})
		Expect(first.EventID).NotTo(BeEmpty())
		Expect(first.EventID).NotTo(Equal(second.EventID))
	})

	It("records indexing stats on CorpusIndexedEvent", func() {
		event := eventstream.NewCorpusEvent("/corpus", 3, 12, 1, true)
		Expect(event.EventType).To(Equal(eventstream.EventTypeCorpusIndexed))
		Expect(event.Documents).To(Equal(3))
		Expect(event.Chunks).To(Equal(12))
		Expect(event.Skipped).To(Equal(1))
		Expect(event.Rebuild).To(BeTrue())
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeTurnPersisted).To(Equal("petal.turn.persisted"))
		Expect(eventstream.EventTypeCorpusIndexed).To(Equal("petal.corpus.indexed"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilEvent).To(MatchError("nil event"))
	})
})
