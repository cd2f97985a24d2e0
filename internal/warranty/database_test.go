package warranty

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	newWarranty := func(id, product string) *Warranty {
		purchase := day(2024, 1, 15)
		return &Warranty{
			ID:           id,
			Product:      product,
			PurchaseDate: purchase,
			ExpiryDate:   Expiry(purchase),
			Filename:     id + "_bill.jpg",
			ContentType:  "image/jpeg",
			CreatedAt:    time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC),
			UpdatedAt:    time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC),
		}
	}

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveWarranty", func() {
		var (
			warranty *Warranty
			err      error
		)

		BeforeEach(func() {
			warranty = newWarranty("test-id", "Blue Blender 3000")
		})

		JustBeforeEach(func() {
			err = db.SaveWarranty(warranty)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round trip every field", func() {
				saved, getErr := db.GetWarranty("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved).To(Equal(warranty))
			})
		})

		When("the warranty has no ID", func() {
			BeforeEach(func() {
				warranty.ID = ""
			})

			It("returns the error", func() {
				Expect(err).To(MatchError("warranty id is required"))
			})
		})

		When("the warranty already exists", func() {
			BeforeEach(func() {
				Expect(db.SaveWarranty(newWarranty("test-id", "Old Name"))).To(Succeed())
			})

			It("replaces it", func() {
				saved, getErr := db.GetWarranty("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Product).To(Equal("Blue Blender 3000"))
			})
		})
	})

	Describe("GetWarranty", func() {
		When("warranty does not exist", func() {
			It("returns ErrNotFound", func() {
				_, err := db.GetWarranty("nonexistent")
				Expect(err).To(MatchError(ErrNotFound))
				Expect(err.Error()).To(Equal("warranty not found: nonexistent"))
			})
		})
	})

	Describe("ListWarranties", func() {
		var (
			warranties []*Warranty
			err        error
		)

		JustBeforeEach(func() {
			warranties, err = db.ListWarranties()
		})

		When("warranties exist", func() {
			BeforeEach(func() {
				Expect(db.SaveWarranty(newWarranty("id1", "Kettle"))).To(Succeed())
				Expect(db.SaveWarranty(newWarranty("id2", "Toaster"))).To(Succeed())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return all warranties", func() {
				Expect(warranties).To(HaveLen(2))
			})
		})

		When("no warranties exist", func() {
			It("should return an empty list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(warranties).To(BeEmpty())
			})
		})
	})

	Describe("DeleteWarranty", func() {
		When("warranty exists", func() {
			BeforeEach(func() {
				Expect(db.SaveWarranty(newWarranty("test-id", "Kettle"))).To(Succeed())
			})

			It("should remove the warranty from the database", func() {
				Expect(db.DeleteWarranty("test-id")).To(Succeed())
				_, getErr := db.GetWarranty("test-id")
				Expect(getErr).To(MatchError(ErrNotFound))
			})
		})

		When("warranty does not exist", func() {
			It("should not return an error", func() {
				Expect(db.DeleteWarranty("nonexistent")).To(Succeed())
			})
		})
	})

	Describe("reopening", func() {
		It("keeps saved warranties", func() {
			Expect(db.SaveWarranty(newWarranty("keep", "Kettle"))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			saved, err := db.GetWarranty("keep")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Product).To(Equal("Kettle"))
		})
	})
})
