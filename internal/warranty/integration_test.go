package warranty_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/warranty-tracker/internal/warranty"
)

// fakeOCR stands in for the OCR engine
type fakeOCR struct {
	text string
}

func (f *fakeOCR) ScanText(imageData []byte, contentType string) (string, error) {
	return f.text, nil
}

func (f *fakeOCR) Close() error {
	return nil
}

var _ = Describe("Integration", func() {
	var (
		tempDir  string
		db       *warranty.BoltDB
		store    *warranty.LocalStorage
		ocr      *fakeOCR
		ghServer *ghttp.Server
	)

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()

		var err error
		db, err = warranty.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = warranty.NewLocalStorage(filepath.Join(tempDir, "receipts"))
		Expect(err).NotTo(HaveOccurred())

		ocr = &fakeOCR{text: "ACME STORES\nItem: Blue Blender 3000\nPurchase: 15/08/2021\nThank you"}

		service := warranty.NewService(db, ocr, store)
		server := warranty.NewServer(service, warranty.BasicAuth{})

		ghServer = ghttp.NewServer()
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)
	})

	AfterEach(func() {
		ghServer.Close()
		db.Close()
	})

	upload := func() *http.Response {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "bill.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("fake jpeg bytes"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/api/warranties", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("reads a bill, stores the warranty and renders its reminder", func() {
		resp := upload()
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var created warranty.Warranty
		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(respBody, &created)).To(Succeed())

		Expect(created.Product).To(Equal("Blue Blender 3000"))
		Expect(created.PurchaseDate).To(Equal(time.Date(2021, 8, 15, 0, 0, 0, 0, time.UTC)))
		Expect(created.ExpiryDate).To(Equal(time.Date(2022, 8, 15, 0, 0, 0, 0, time.UTC)))

		// The receipt file and the record are both persisted
		_, err = store.Get(created.Filename)
		Expect(err).NotTo(HaveOccurred())
		saved, err := db.GetWarranty(created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Product).To(Equal("Blue Blender 3000"))

		reminderResp, err := http.Get(ghServer.URL() + "/api/warranties/" + created.ID + "/reminder")
		Expect(err).NotTo(HaveOccurred())
		defer reminderResp.Body.Close()
		reminder, err := io.ReadAll(reminderResp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(reminder)).To(ContainSubstring("*Blue Blender 3000* warranty will expire on *2022-08-15*"))

		req, err := http.NewRequest(http.MethodDelete, ghServer.URL()+"/api/warranties/"+created.ID, nil)
		Expect(err).NotTo(HaveOccurred())
		deleteResp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		deleteResp.Body.Close()
		Expect(deleteResp.StatusCode).To(Equal(http.StatusNoContent))

		_, err = db.GetWarranty(created.ID)
		Expect(err).To(MatchError(warranty.ErrNotFound))
		_, err = store.Get(created.Filename)
		Expect(err).To(HaveOccurred())
	})

	It("keeps nothing when the bill cannot be read", func() {
		ocr.text = "blurry mess"

		resp := upload()
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))

		warranties, err := db.ListWarranties()
		Expect(err).NotTo(HaveOccurred())
		Expect(warranties).To(BeEmpty())
		entries, err := filepath.Glob(filepath.Join(tempDir, "receipts", "*"))
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})
})
