// Package storage enthält die Senken eines Snapshot-Laufs: den
// RDF-Serialisierer, die Lauf-Historie und die S3-Ablage.
package storage

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/knakk/rdf"
	"go.uber.org/zap"

	"rdbackup/models"
)

const (
	sgNamespace  = "sg://0.99.12/"
	colNamespace = "sg://0.99.12/table/"
	rdfTypeIRI   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// IDSource vergibt die internen IDs, über die der Graph relationale
// Fremdschlüssel emuliert.
type IDSource interface {
	Next(kind string) int64
}

// Graph sammelt die Tripel eines Snapshots unter einem Named Graph.
// Er gehört dem Orchestrator; Worker liefern Records, sie schreiben
// keine Tripel selbst.
type Graph struct {
	IRI    string
	Logger *zap.Logger

	ids     IDSource
	triples []rdf.Triple

	// De-Duplizierung über Records hinweg: dieselben Autoren, Lizenzen
	// und Kategorien tauchen in vielen Datasets auf.
	authorIDs  map[int64]int64
	licenses   map[int64]bool
	categories map[int64]bool
}

// NewGraph erstellt einen leeren Snapshot-Graphen unter der gegebenen IRI.
func NewGraph(iri string, ids IDSource, logger *zap.Logger) *Graph {
	return &Graph{
		IRI:        iri,
		Logger:     logger,
		ids:        ids,
		authorIDs:  make(map[int64]int64),
		licenses:   make(map[int64]bool),
		categories: make(map[int64]bool),
	}
}

// Len gibt die Anzahl der gesammelten Tripel zurück.
func (g *Graph) Len() int {
	return len(g.triples)
}

// newSubject mintet einen UUID-gestützten Subjekt-Knoten.
func newSubject() rdf.IRI {
	subject, err := rdf.NewIRI(sgNamespace + uuid.NewString())
	if err != nil {
		// Namespace und UUID sind beide kontrolliert; das passiert nicht.
		panic(err)
	}
	return subject
}

// Blank mintet einen UUID-gestützten Blank Node.
func Blank() rdf.Blank {
	blank, err := rdf.NewBlank("b" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err != nil {
		panic(err)
	}
	return blank
}

// classify hängt das rdf:type-Tripel für einen Entitätstyp an.
func (g *Graph) classify(subject rdf.IRI, entity string) {
	predicate, _ := rdf.NewIRI(rdfTypeIRI)
	object, _ := rdf.NewIRI(sgNamespace + entity)
	g.triples = append(g.triples, rdf.Triple{Subj: subject, Pred: predicate, Obj: object})
}

// add hängt ein Tripel mit col:-Prädikat an. Nil-Werte, leere Strings und
// Null-Zeitstempel erzeugen kein Tripel (null-erhaltende Serialisierung).
func (g *Graph) add(subject rdf.IRI, field string, value interface{}) {
	var object rdf.Object

	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
		object = mustLiteral(normalizeText(v))
	case *string:
		if v == nil || *v == "" {
			return
		}
		object = mustLiteral(normalizeText(*v))
	case int:
		object = mustLiteral(v)
	case int64:
		object = mustLiteral(v)
	case *int64:
		if v == nil {
			return
		}
		object = mustLiteral(*v)
	case bool:
		object = mustLiteral(v)
	case float64:
		object = mustLiteral(v)
	case *models.Timestamp:
		if v == nil || v.IsZero() {
			return
		}
		object = mustLiteral(v.Time.UTC())
	default:
		g.Logger.Warn("Feldtyp kann nicht serialisiert werden",
			zap.String("field", field), zap.Any("value", value))
		return
	}

	predicate, err := rdf.NewIRI(colNamespace + field)
	if err != nil {
		g.Logger.Warn("Ungültiger Feldname", zap.String("field", field), zap.Error(err))
		return
	}
	g.triples = append(g.triples, rdf.Triple{Subj: subject, Pred: predicate, Obj: object})
}

func mustLiteral(v interface{}) rdf.Literal {
	literal, err := rdf.NewLiteral(v)
	if err != nil {
		panic(err)
	}
	return literal
}

// AddAccount schreibt einen Account-Record und vergibt seine interne ID.
func (g *Graph) AddAccount(account *models.Account) error {
	if account.FigshareID == 0 {
		return fmt.Errorf("account ohne Upstream-ID")
	}
	account.InternalID = g.ids.Next("account")

	subject := newSubject()
	g.classify(subject, "Account")
	g.add(subject, "id", account.InternalID)
	g.add(subject, "account_id", account.FigshareID)
	g.add(subject, "email", account.Email)
	g.add(subject, "first_name", account.FirstName)
	g.add(subject, "last_name", account.LastName)
	g.add(subject, "maiden_name", account.MaidenName)
	g.add(subject, "active", account.Active)
	g.add(subject, "institution_id", account.InstitutionID)
	g.add(subject, "institution_user_id", account.InstitutionUserID)
	g.add(subject, "group_id", account.GroupID)
	g.add(subject, "quota", account.Quota)
	g.add(subject, "used_quota", account.UsedQuota)
	g.add(subject, "used_quota_public", account.UsedQuotaPublic)
	g.add(subject, "used_quota_private", account.UsedQuotaPrivate)
	g.add(subject, "pending_quota_request", account.PendingQuota)
	g.add(subject, "created_date", account.CreatedDate)
	g.add(subject, "modified_date", account.ModifiedDate)
	return nil
}

// AddDataset schreibt einen Dataset-Record (aktueller Stand oder Version)
// samt Autoren, Tags, Kategorien, Referenzen, Dateien, Custom Fields,
// Förderungen und Private Links. accountID ist die interne Account-ID.
func (g *Graph) AddDataset(dataset *models.Dataset, accountID int64) error {
	if dataset.FigshareID == 0 {
		return fmt.Errorf("dataset ohne Upstream-ID")
	}
	dataset.InternalID = g.ids.Next("article")

	subject := newSubject()
	g.classify(subject, "Article")
	g.add(subject, "id", dataset.InternalID)
	g.add(subject, "article_id", dataset.FigshareID)
	g.add(subject, "account_id", accountID)
	g.add(subject, "title", dataset.Title)
	g.add(subject, "doi", dataset.DOI)
	g.add(subject, "handle", dataset.Handle)
	g.add(subject, "group_id", dataset.GroupID)
	g.add(subject, "url", dataset.URL)
	g.add(subject, "url_public_html", dataset.URLPublicHTML)
	g.add(subject, "url_public_api", dataset.URLPublicAPI)
	g.add(subject, "url_private_html", dataset.URLPrivateHTML)
	g.add(subject, "url_private_api", dataset.URLPrivateAPI)
	g.add(subject, "description", dataset.Description)
	g.add(subject, "defined_type", dataset.DefinedType)
	g.add(subject, "defined_type_name", dataset.DefinedTypeName)
	g.add(subject, "citation", dataset.Citation)
	g.add(subject, "status", dataset.Status)
	g.add(subject, "thumb", dataset.Thumb)
	g.add(subject, "is_public", dataset.IsPublic)
	g.add(subject, "is_embargoed", dataset.IsEmbargoed)
	g.add(subject, "is_confidential", dataset.IsConfidential)
	g.add(subject, "is_metadata_record", dataset.IsMetadataRecord)
	g.add(subject, "confidential_reason", dataset.ConfidentialReason)
	g.add(subject, "metadata_reason", dataset.MetadataReason)
	g.add(subject, "embargo_date", dataset.EmbargoDate)
	g.add(subject, "embargo_type", dataset.EmbargoType)
	g.add(subject, "embargo_title", dataset.EmbargoTitle)
	g.add(subject, "embargo_reason", dataset.EmbargoReason)
	g.add(subject, "size", dataset.Size)
	g.add(subject, "has_linked_file", dataset.HasLinkedFile)
	g.add(subject, "created_date", dataset.CreatedDate)
	g.add(subject, "modified_date", dataset.ModifiedDate)
	g.add(subject, "published_date", dataset.PublishedDate)
	g.add(subject, "version", dataset.Version)
	g.add(subject, "is_latest", dataset.IsLatest)
	g.add(subject, "is_editable", dataset.IsEditable)

	if dataset.License != nil {
		g.ensureLicense(dataset.License)
		g.add(subject, "license_id", dataset.License.FigshareID)
	}
	if dataset.Timeline != nil {
		g.add(subject, "timeline_id", g.addTimeline(dataset.Timeline))
	}

	for index := range dataset.Authors {
		authorID := g.ensureAuthor(&dataset.Authors[index])
		link := newSubject()
		g.classify(link, "ArticleAuthor")
		g.add(link, "article_id", dataset.InternalID)
		g.add(link, "author_id", authorID)
		g.add(link, "order_index", int64(index))
	}
	for _, tag := range dataset.Tags {
		link := newSubject()
		g.classify(link, "ArticleTag")
		g.add(link, "article_id", dataset.InternalID)
		g.add(link, "tag", tag)
	}
	for index := range dataset.Categories {
		category := &dataset.Categories[index]
		g.ensureCategory(category)
		link := newSubject()
		g.classify(link, "ArticleCategory")
		g.add(link, "article_id", dataset.InternalID)
		g.add(link, "category_id", category.FigshareID)
	}
	for _, reference := range dataset.References {
		link := newSubject()
		g.classify(link, "ArticleReference")
		g.add(link, "article_id", dataset.InternalID)
		g.add(link, "url", reference)
	}
	for index := range dataset.Files {
		g.addFile(&dataset.Files[index], dataset.InternalID)
	}
	for index := range dataset.CustomFields {
		g.addCustomField(&dataset.CustomFields[index], "article_id", dataset.InternalID)
	}
	for index := range dataset.Funding {
		g.addFunding(&dataset.Funding[index], dataset.InternalID)
	}
	for index := range dataset.PrivateLinks {
		g.addPrivateLink(&dataset.PrivateLinks[index], "article_id", dataset.InternalID)
	}
	return nil
}

// AddCollection schreibt einen Collection-Record samt Autoren, Tags,
// Kategorien, Custom Fields, Private Links und den Verweisen auf die
// enthaltenen Artikel (nur Upstream-IDs; dereferenziert wird anderswo).
func (g *Graph) AddCollection(collection *models.Collection, accountID int64) error {
	if collection.FigshareID == 0 {
		return fmt.Errorf("collection ohne Upstream-ID")
	}
	collection.InternalID = g.ids.Next("collection")

	subject := newSubject()
	g.classify(subject, "Collection")
	g.add(subject, "id", collection.InternalID)
	g.add(subject, "collection_id", collection.FigshareID)
	g.add(subject, "account_id", accountID)
	g.add(subject, "title", collection.Title)
	g.add(subject, "doi", collection.DOI)
	g.add(subject, "handle", collection.Handle)
	g.add(subject, "description", collection.Description)
	g.add(subject, "group_id", collection.GroupID)
	g.add(subject, "institution_id", collection.InstitutionID)
	g.add(subject, "url", collection.URL)
	g.add(subject, "citation", collection.Citation)
	g.add(subject, "articles_count", collection.ArticlesCount)
	g.add(subject, "public", collection.Public)
	g.add(subject, "resource_id", collection.ResourceID)
	g.add(subject, "resource_doi", collection.ResourceDOI)
	g.add(subject, "resource_title", collection.ResourceTitle)
	g.add(subject, "resource_link", collection.ResourceLink)
	g.add(subject, "resource_version", collection.ResourceVersion)
	g.add(subject, "created_date", collection.CreatedDate)
	g.add(subject, "modified_date", collection.ModifiedDate)
	g.add(subject, "published_date", collection.PublishedDate)
	g.add(subject, "version", collection.Version)
	g.add(subject, "is_latest", collection.IsLatest)
	g.add(subject, "is_editable", collection.IsEditable)

	if collection.Timeline != nil {
		g.add(subject, "timeline_id", g.addTimeline(collection.Timeline))
	}

	for index := range collection.Authors {
		authorID := g.ensureAuthor(&collection.Authors[index])
		link := newSubject()
		g.classify(link, "CollectionAuthor")
		g.add(link, "collection_id", collection.InternalID)
		g.add(link, "author_id", authorID)
		g.add(link, "order_index", int64(index))
	}
	for _, tag := range collection.Tags {
		link := newSubject()
		g.classify(link, "CollectionTag")
		g.add(link, "collection_id", collection.InternalID)
		g.add(link, "tag", tag)
	}
	for index := range collection.Categories {
		category := &collection.Categories[index]
		g.ensureCategory(category)
		link := newSubject()
		g.classify(link, "CollectionCategory")
		g.add(link, "collection_id", collection.InternalID)
		g.add(link, "category_id", category.FigshareID)
	}
	for _, articleID := range collection.ArticleIDs {
		link := newSubject()
		g.classify(link, "CollectionArticle")
		g.add(link, "collection_id", collection.InternalID)
		g.add(link, "article_id", articleID)
	}
	for index := range collection.CustomFields {
		g.addCustomField(&collection.CustomFields[index], "collection_id", collection.InternalID)
	}
	for index := range collection.PrivateLinks {
		g.addPrivateLink(&collection.PrivateLinks[index], "collection_id", collection.InternalID)
	}
	return nil
}

// AddGroup schreibt eine institutionelle Gruppe.
func (g *Graph) AddGroup(group *models.Group) error {
	if group.FigshareID == 0 {
		return fmt.Errorf("gruppe ohne Upstream-ID")
	}
	subject := newSubject()
	g.classify(subject, "InstitutionGroup")
	g.add(subject, "id", group.FigshareID)
	g.add(subject, "parent_id", group.ParentID)
	g.add(subject, "name", group.Name)
	g.add(subject, "resource_id", group.ResourceID)
	g.add(subject, "association_criteria", group.AssociationCriteria)
	return nil
}

// AddStatistics schreibt die Statistik eines Items: eine Zeile pro Tag
// über alle Metriken hinweg plus eine Gesamtzeile ohne Datum.
func (g *Graph) AddStatistics(statistics *models.ItemStatistics) {
	if statistics.Empty() {
		return
	}

	perDay := make(map[string]*models.StatisticsTotals)
	merge := func(days []models.DayCount, pick func(*models.StatisticsTotals) *int64) {
		for _, day := range days {
			if perDay[day.Date] == nil {
				perDay[day.Date] = &models.StatisticsTotals{}
			}
			*pick(perDay[day.Date]) += day.Count
		}
	}
	merge(statistics.Views, func(t *models.StatisticsTotals) *int64 { return &t.Views })
	merge(statistics.Downloads, func(t *models.StatisticsTotals) *int64 { return &t.Downloads })
	merge(statistics.Shares, func(t *models.StatisticsTotals) *int64 { return &t.Shares })

	for date, counts := range perDay {
		subject := newSubject()
		g.classify(subject, "Statistics")
		g.add(subject, "id", g.ids.Next("statistics"))
		g.add(subject, "item_id", statistics.ItemID)
		g.add(subject, "item_type", statistics.ItemType)
		g.add(subject, "date", date)
		g.add(subject, "views", counts.Views)
		g.add(subject, "downloads", counts.Downloads)
		g.add(subject, "shares", counts.Shares)
	}

	if statistics.Totals != nil {
		subject := newSubject()
		g.classify(subject, "StatisticsTotal")
		g.add(subject, "id", g.ids.Next("statistics"))
		g.add(subject, "item_id", statistics.ItemID)
		g.add(subject, "item_type", statistics.ItemType)
		g.add(subject, "views", statistics.Totals.Views)
		g.add(subject, "downloads", statistics.Totals.Downloads)
		g.add(subject, "shares", statistics.Totals.Shares)
	}
}

// ensureAuthor schreibt einen Autor genau einmal und gibt seine interne ID
// zurück, egal in wie vielen Datasets er auftaucht.
func (g *Graph) ensureAuthor(author *models.Author) int64 {
	if internalID, ok := g.authorIDs[author.FigshareID]; ok {
		author.InternalID = internalID
		return internalID
	}
	author.InternalID = g.ids.Next("author")
	g.authorIDs[author.FigshareID] = author.InternalID

	subject := newSubject()
	g.classify(subject, "Author")
	g.add(subject, "id", author.InternalID)
	g.add(subject, "author_id", author.FigshareID)
	g.add(subject, "full_name", author.FullName)
	g.add(subject, "first_name", author.FirstName)
	g.add(subject, "last_name", author.LastName)
	g.add(subject, "url_name", author.URLName)
	g.add(subject, "orcid_id", author.OrcidID)
	g.add(subject, "job_title", author.JobTitle)
	g.add(subject, "is_active", author.IsActive)
	g.add(subject, "is_public", author.IsPublic)
	g.add(subject, "group_id", author.GroupID)
	return author.InternalID
}

func (g *Graph) ensureLicense(license *models.License) {
	if g.licenses[license.FigshareID] {
		return
	}
	g.licenses[license.FigshareID] = true

	subject := newSubject()
	g.classify(subject, "License")
	g.add(subject, "id", license.FigshareID)
	g.add(subject, "name", license.Name)
	g.add(subject, "url", license.URL)
}

func (g *Graph) ensureCategory(category *models.Category) {
	if g.categories[category.FigshareID] {
		return
	}
	g.categories[category.FigshareID] = true

	subject := newSubject()
	g.classify(subject, "Category")
	g.add(subject, "id", category.FigshareID)
	g.add(subject, "title", category.Title)
	g.add(subject, "parent_id", category.ParentID)
	g.add(subject, "source_id", category.SourceID)
	g.add(subject, "taxonomy_id", category.TaxonomyID)
}

// addTimeline schreibt eine Timeline und gibt ihre synthetische ID zurück.
func (g *Graph) addTimeline(timeline *models.Timeline) int64 {
	timeline.InternalID = g.ids.Next("timeline")

	subject := newSubject()
	g.classify(subject, "Timeline")
	g.add(subject, "id", timeline.InternalID)
	g.add(subject, "posted", timeline.Posted)
	g.add(subject, "submission", timeline.Submission)
	g.add(subject, "revision", timeline.Revision)
	g.add(subject, "first_online", timeline.FirstOnline)
	g.add(subject, "publisher_acceptance", timeline.PublisherAcceptance)
	g.add(subject, "publisher_publication", timeline.PublisherPublication)
	return timeline.InternalID
}

func (g *Graph) addFile(file *models.File, articleID int64) {
	file.InternalID = g.ids.Next("file")

	subject := newSubject()
	g.classify(subject, "File")
	g.add(subject, "id", file.InternalID)
	g.add(subject, "file_id", file.FigshareID)
	g.add(subject, "article_id", articleID)
	g.add(subject, "name", file.Name)
	g.add(subject, "size", file.Size)
	g.add(subject, "is_link_only", file.IsLinkOnly)
	g.add(subject, "download_url", file.DownloadURL)
	g.add(subject, "supplied_md5", file.SuppliedMD5)
	g.add(subject, "computed_md5", file.ComputedMD5)
	g.add(subject, "viewer_type", file.ViewerType)
	g.add(subject, "preview_state", file.PreviewState)
	g.add(subject, "status", file.Status)
	g.add(subject, "upload_url", file.UploadURL)
	g.add(subject, "upload_token", file.UploadToken)
}

func (g *Graph) addCustomField(field *models.CustomField, parentPredicate string, parentID int64) {
	field.InternalID = g.ids.Next("custom_field")

	subject := newSubject()
	g.classify(subject, "CustomField")
	g.add(subject, "id", field.InternalID)
	g.add(subject, parentPredicate, parentID)
	g.add(subject, "name", field.Name)
	for _, value := range field.Value {
		g.add(subject, "value", value)
	}
	g.add(subject, "field_type", field.FieldType)
	g.add(subject, "is_mandatory", field.IsMandatory)
	g.add(subject, "is_multiple", field.IsMultiple)
	g.add(subject, "default", field.Default)
	g.add(subject, "max_length", field.MaxLength)
	g.add(subject, "min_length", field.MinLength)
	for _, option := range field.Options {
		g.add(subject, "option", option)
	}
}

func (g *Graph) addFunding(funding *models.Funding, articleID int64) {
	funding.InternalID = g.ids.Next("funding")

	subject := newSubject()
	g.classify(subject, "Funding")
	g.add(subject, "id", funding.InternalID)
	g.add(subject, "funding_id", funding.FigshareID)
	g.add(subject, "article_id", articleID)
	g.add(subject, "title", funding.Title)
	g.add(subject, "grant_code", funding.GrantCode)
	g.add(subject, "funder_name", funding.FunderName)
	g.add(subject, "url", funding.URL)
	g.add(subject, "is_user_defined", funding.IsUserDefined)
}

func (g *Graph) addPrivateLink(link *models.PrivateLink, parentPredicate string, parentID int64) {
	link.InternalID = g.ids.Next("private_link")

	subject := newSubject()
	g.classify(subject, "PrivateLink")
	g.add(subject, "id", link.InternalID)
	g.add(subject, parentPredicate, parentID)
	g.add(subject, "link_id", link.FigshareID)
	g.add(subject, "is_active", link.IsActive)
	g.add(subject, "expires_date", link.ExpiresDate)
}

// WriteFile serialisiert den Graphen als N-Triples in eine Datei.
func (g *Graph) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot-datei konnte nicht angelegt werden: %w", err)
	}

	encoder := rdf.NewTripleEncoder(file, rdf.NTriples)
	for _, triple := range g.triples {
		if err := encoder.Encode(triple); err != nil {
			encoder.Close()
			file.Close()
			return fmt.Errorf("tripel konnte nicht serialisiert werden: %w", err)
		}
	}
	if err := encoder.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// InsertQuery baut das SPARQL-1.1-Update, das den Snapshot in den
// Named Graph eines Triple Stores schreibt.
func (g *Graph) InsertQuery() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "INSERT { GRAPH <%s> {\n", g.IRI)
	for _, triple := range g.triples {
		serialized := triple.Serialize(rdf.NTriples)
		builder.WriteString(serialized)
		if !strings.HasSuffix(serialized, "\n") {
			builder.WriteByte('\n')
		}
	}
	builder.WriteString("} }")
	return builder.String()
}

// Serialized gibt alle Tripel als N-Triples-Text zurück.
func (g *Graph) Serialized() string {
	var builder strings.Builder
	for _, triple := range g.triples {
		serialized := triple.Serialize(rdf.NTriples)
		builder.WriteString(serialized)
		if !strings.HasSuffix(serialized, "\n") {
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}
