package http

import "encoding/xml"

// identifiersXML is the OGC bridge listing of CRS identifier URLs.
type identifiersXML struct {
	XMLName     xml.Name `xml:"identifiers"`
	Xmlns       string   `xml:"xmlns,attr"`
	Identifiers []string `xml:"identifier"`
}

func newIdentifiersXML(urls []string) identifiersXML {
	return identifiersXML{
		Xmlns:       "http://www.opengis.net/crs-nts/1.0",
		Identifiers: urls,
	}
}

type exceptionXML struct {
	Code string `xml:"exceptionCode,attr"`
	Text string `xml:"ExceptionText"`
}

// exceptionReportXML is the OWS exception report returned by the OGC
// bridge routes instead of a JSON error body.
type exceptionReportXML struct {
	XMLName   xml.Name     `xml:"ExceptionReport"`
	Xmlns     string       `xml:"xmlns,attr"`
	Version   string       `xml:"version,attr"`
	Exception exceptionXML `xml:"Exception"`
}

func newExceptionReportXML(code, text string) exceptionReportXML {
	return exceptionReportXML{
		Xmlns:     "http://www.opengis.net/ows/2.0",
		Version:   "2.0.0",
		Exception: exceptionXML{Code: code, Text: text},
	}
}
