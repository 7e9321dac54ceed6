// Command mockcatalog serves a minimal CKAN-shaped catalog with one
// embedded road-incident CSV, for offline runs and demos:
//
//	go run ./cmd/mockcatalog -addr :9090
//	CKAN_BASE_URL=http://localhost:9090 go run ./cmd/analyze -keyword incidenti
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

const sampleCSV = `Data,Condizioni traffico,N. veicoli coinvolti,Latitudine,Longitudine,Note
2024-03-01,Intenso,3,41.9028,12.4964,Tamponamento in tangenziale
2024-03-02,Intenso,1,41.8931,12.4828,
2024-03-03,Normale,5,41.9109,12.4818,Carambola senza feriti
2024-03-04,Intenso,4,,12.5113,Coordinate parziali
2024-03-05,Scarso,2,41.8719,12.5674,
2024-03-06,Intenso,3,41.9255,12.4387,Incrocio trafficato
`

var datasets = []string{
	"incidenti-stradali-roma-2024",
	"qualita-aria-lazio",
	"incidenti-stradali-milano-2023",
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /package_list", handleList)
	mux.HandleFunc("GET /package_show", handleShow(*addr))
	mux.HandleFunc("GET /datasets/incidenti.csv", handleCSV)

	log.Printf("mock catalog listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"success": true,
		"result":  datasets,
	})
}

func handleShow(addr string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		found := false
		for _, d := range datasets {
			if d == id {
				found = true
				break
			}
		}
		if !found {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"success": false}`) //nolint:errcheck // best-effort fixture response
			return
		}

		writeJSON(w, map[string]any{
			"success": true,
			"result": map[string]any{
				"id":    id,
				"name":  id,
				"title": "Incidenti stradali (dati di esempio)",
				"resources": []map[string]string{
					{
						"name":   "Pagina del dataset",
						"format": "HTML",
						"url":    fmt.Sprintf("http://localhost%s/datasets", addr),
					},
					{
						"name":   "Estrazione CSV",
						"format": "CSV",
						"url":    fmt.Sprintf("http://localhost%s/datasets/incidenti.csv", addr),
					},
				},
			},
		})
	}
}

func handleCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	fmt.Fprint(w, sampleCSV) //nolint:errcheck // best-effort fixture response
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort fixture response
}
