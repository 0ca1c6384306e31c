package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/husseinallaw/receiptvault-app/internal/exchange"
	"github.com/husseinallaw/receiptvault-app/internal/insights"
	"github.com/husseinallaw/receiptvault-app/internal/priceindex"
)

// mockIndex is an in-memory implementation of priceindex.Index
type mockIndex struct {
	entries   map[string]*priceindex.Entry
	recordErr error
	getErr    error
}

func newMockIndex() *mockIndex {
	return &mockIndex{entries: make(map[string]*priceindex.Entry)}
}

func (m *mockIndex) Record(productID string, obs priceindex.Observation) (*priceindex.Entry, error) {
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	entry := priceindex.Apply(m.entries[productID], productID, obs, time.Now())
	m.entries[productID] = entry
	return entry, nil
}

func (m *mockIndex) Get(productID string) (*priceindex.Entry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[productID], nil
}

// mockRates is a mock implementation of RateSource
type mockRates struct {
	rates []*exchange.Rate
	err   error
}

func (m *mockRates) Active() ([]*exchange.Rate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rates, nil
}

// mockInsights is a mock implementation of InsightSource
type mockInsights struct {
	list []*insights.Insight
	err  error
}

func (m *mockInsights) List() ([]*insights.Insight, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		index       *mockIndex
		rates       *mockRates
		insightSrc  *mockInsights
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, index, rates, insightSrc, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		index = newMockIndex()
		rates = &mockRates{}
		insightSrc = &mockInsights{}
		service = NewService(db, newMockProvider(), newMockStorage())
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleListReceipts", func() {
		When("receipts exist", func() {
			BeforeEach(func() {
				db.receipts["id1"] = &Receipt{ID: "id1", StoreName: "Spinneys"}
				db.receipts["id2"] = &Receipt{ID: "id2", StoreName: "Happy"}
			})

			It("should return all receipts as JSON", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))

				var receipts []*Receipt
				Expect(json.NewDecoder(resp.Body).Decode(&receipts)).To(Succeed())
				Expect(receipts).To(HaveLen(2))
			})
		})

		When("no receipts exist", func() {
			It("should return an empty array", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(strings.TrimSpace(string(body))).To(Equal("[]"))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.listErr = errors.New("db error")
			})

			It("should return status Internal Server Error", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				resp.Body.Close()
			})
		})
	})

	Describe("handleUploadReceipt", func() {
		var uploadResponse = func(filename string, data []byte) *http.Response {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile("file", filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(writer.Close()).To(Succeed())

			req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/receipts", &buf)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", writer.FormDataContentType())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("the upload succeeds", func() {
			It("should return the extracted receipt with status Created", func() {
				resp := uploadResponse("receipt.jpg", []byte("fake image data"))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var receipt Receipt
				Expect(json.NewDecoder(resp.Body).Decode(&receipt)).To(Succeed())
				Expect(receipt.StoreName).To(Equal("Spinneys"))
				Expect(receipt.Status).To(Equal(StatusProcessed))
				Expect(receipt.TotalLBP).To(HaveValue(Equal(42000.0)))
			})
		})

		When("no file is provided", func() {
			It("should return status Bad Request", func() {
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/receipts", strings.NewReader(""))
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handleGetReceipt", func() {
		When("the receipt exists", func() {
			BeforeEach(func() {
				db.receipts["test-id"] = &Receipt{ID: "test-id", StoreName: "Spinneys"}
			})

			It("should return the receipt", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/test-id")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var receipt Receipt
				Expect(json.NewDecoder(resp.Body).Decode(&receipt)).To(Succeed())
				Expect(receipt.ID).To(Equal("test-id"))
			})
		})

		When("the receipt does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/nonexistent")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})
		})
	})

	Describe("handleDeleteReceipt", func() {
		When("the receipt exists", func() {
			var storage *mockStorage

			BeforeEach(func() {
				storage = newMockStorage()
				storage.files["test.jpg"] = []byte("data")
				db.receipts["test-id"] = &Receipt{ID: "test-id", Filename: "test.jpg"}
				service = NewService(db, newMockProvider(), storage)
				setupServer()
			})

			It("should return status No Content and remove the receipt", func() {
				req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/test-id", nil)
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
				resp.Body.Close()

				Expect(db.receipts).NotTo(HaveKey("test-id"))
			})
		})
	})

	Describe("handleRecordPrice", func() {
		var recordPrice = func(productID string, body string) *http.Response {
			resp, err := http.Post(
				ghttpServer.URL()+"/api/products/"+productID+"/prices",
				"application/json",
				strings.NewReader(body),
			)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		When("the observation is valid", func() {
			It("should return the updated index entry", func() {
				resp := recordPrice("rice-1kg", `{"store_id":"spinneys","price":120000,"currency":"LBP"}`)
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var entry priceindex.Entry
				Expect(json.NewDecoder(resp.Body).Decode(&entry)).To(Succeed())
				Expect(entry.ProductID).To(Equal("rice-1kg"))
				Expect(entry.Stores).To(HaveKey("spinneys"))
				Expect(entry.LowestPrice.Price).To(Equal(120000.0))
			})
		})

		When("the store is missing", func() {
			It("should return status Bad Request", func() {
				resp := recordPrice("rice-1kg", `{"price":120000,"currency":"LBP"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("the price is negative", func() {
			It("should return status Bad Request", func() {
				resp := recordPrice("rice-1kg", `{"store_id":"spinneys","price":-1,"currency":"LBP"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("the currency is unknown", func() {
			It("should return status Bad Request", func() {
				resp := recordPrice("rice-1kg", `{"store_id":"spinneys","price":10,"currency":"EUR"}`)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})

		When("the body is not JSON", func() {
			It("should return status Bad Request", func() {
				resp := recordPrice("rice-1kg", "not json")
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
			})
		})
	})

	Describe("handleGetPriceIndex", func() {
		When("the product has an entry", func() {
			BeforeEach(func() {
				index.entries["rice-1kg"] = priceindex.Apply(nil, "rice-1kg", priceindex.Observation{
					StoreID: "spinneys", Price: 120000, Currency: "LBP", RecordedAt: time.Now(),
				}, time.Now())
			})

			It("should return the entry", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/products/rice-1kg/index")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var entry priceindex.Entry
				Expect(json.NewDecoder(resp.Body).Decode(&entry)).To(Succeed())
				Expect(entry.ProductID).To(Equal("rice-1kg"))
			})
		})

		When("the product has no entry", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/products/nonexistent/index")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
				resp.Body.Close()
			})
		})
	})

	Describe("handleListRates", func() {
		BeforeEach(func() {
			rates.rates = []*exchange.Rate{
				{ID: "r1", Source: "black_market", UsdToLbp: 89500, IsActive: true},
			}
		})

		It("should return the active rates", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/exchange-rates")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got []*exchange.Rate
			Expect(json.NewDecoder(resp.Body).Decode(&got)).To(Succeed())
			Expect(got).To(HaveLen(1))
			Expect(got[0].UsdToLbp).To(Equal(89500.0))
		})
	})

	Describe("handleListInsights", func() {
		BeforeEach(func() {
			insightSrc.list = []*insights.Insight{
				{Period: "2024-06-08_2024-06-15", ReceiptCount: 3},
			}
		})

		It("should return the stored insights", func() {
			resp, err := http.Get(ghttpServer.URL() + "/api/insights")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got []*insights.Insight
			Expect(json.NewDecoder(resp.Body).Decode(&got)).To(Succeed())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ReceiptCount).To(Equal(3))
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		When("no credentials are provided", func() {
			It("should return status Unauthorized", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})

			It("should challenge with WWW-Authenticate", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
				resp.Body.Close()
			})
		})

		When("valid credentials are provided", func() {
			It("should serve the request", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})

		When("wrong credentials are provided", func() {
			It("should return status Unauthorized", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:wrong")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})
		})
	})
})
