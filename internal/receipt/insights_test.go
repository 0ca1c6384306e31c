package receipt

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SpendingSource", func() {
	var (
		db     *mockDB
		source *SpendingSource
		from   time.Time
		to     time.Time
	)

	strPtr := func(s string) *string { return &s }
	numPtr := func(f float64) *float64 { return &f }

	BeforeEach(func() {
		db = newMockDB()
		source = NewSpendingSource(db)
		from = time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
		to = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	})

	When("receipts fall inside the window", func() {
		BeforeEach(func() {
			db.receipts["in"] = &Receipt{
				ID:       "in",
				StoreID:  strPtr("spinneys"),
				Date:     strPtr("2024-06-10"),
				TotalLBP: numPtr(42000),
			}
			db.receipts["before"] = &Receipt{
				ID:       "before",
				Date:     strPtr("2024-06-01"),
				TotalLBP: numPtr(9999),
			}
			db.receipts["at-end"] = &Receipt{
				ID:       "at-end",
				Date:     strPtr("2024-06-15"),
				TotalLBP: numPtr(9999),
			}
		})

		It("should return only the receipts within [from, to)", func() {
			summaries, err := source.ReceiptsBetween(from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(1))
			Expect(summaries[0].StoreID).To(Equal("spinneys"))
			Expect(summaries[0].TotalLBP).To(Equal(42000.0))
		})
	})

	When("a receipt has no extracted date", func() {
		BeforeEach(func() {
			db.receipts["undated"] = &Receipt{
				ID:        "undated",
				TotalUSD:  numPtr(15),
				CreatedAt: time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC),
			}
		})

		It("should fall back to the creation time", func() {
			summaries, err := source.ReceiptsBetween(from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(1))
			Expect(summaries[0].TotalUSD).To(Equal(15.0))
		})
	})

	When("a receipt has an unparseable date", func() {
		BeforeEach(func() {
			db.receipts["odd"] = &Receipt{
				ID:        "odd",
				Date:      strPtr("not-a-date"),
				TotalLBP:  numPtr(5000),
				CreatedAt: time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC),
			}
		})

		It("should fall back to the creation time", func() {
			summaries, err := source.ReceiptsBetween(from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(1))
		})
	})

	When("the database fails", func() {
		var setupErr error

		BeforeEach(func() {
			setupErr = errors.New("db error")
			db.listErr = setupErr
		})

		It("returns the error", func() {
			_, err := source.ReceiptsBetween(from, to)
			Expect(err).To(MatchError(setupErr))
		})
	})
})
