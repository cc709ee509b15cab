// Package mongostore keeps contracts, contract types and users in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rahulraut1220/LegalEase/model"
	"github.com/rahulraut1220/LegalEase/service"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	contractTypesCollection = "contract_types"
	contractsCollection     = "contracts"
)

type userDoc struct {
	ID                   string    `bson:"_id"`
	Name                 string    `bson:"name"`
	Email                string    `bson:"email"`
	PasswordHash         string    `bson:"passwordHash"`
	Role                 string    `bson:"role"`
	Phone                string    `bson:"phone,omitempty"`
	Specialization       string    `bson:"specialization,omitempty"`
	BarAssociationNumber string    `bson:"barAssociationNumber,omitempty"`
	CreatedAt            time.Time `bson:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt"`
}

type fieldDoc struct {
	Name    string   `bson:"name"`
	Label   string   `bson:"label"`
	Kind    string   `bson:"type"`
	Options []string `bson:"options,omitempty"`
}

type contractTypeDoc struct {
	ID             string     `bson:"_id"`
	Name           string     `bson:"name"`
	Description    string     `bson:"description"`
	RequiredFields []fieldDoc `bson:"requiredFields"`
	Template       string     `bson:"template"`
	ValidityPeriod int        `bson:"validityPeriod"`
	CreatedAt      time.Time  `bson:"createdAt"`
}

type contractDoc struct {
	ID              string         `bson:"_id"`
	ContractTypeID  string         `bson:"contractType"`
	ClientID        string         `bson:"client"`
	LawyerID        string         `bson:"lawyer"`
	ContractData    map[string]any `bson:"contractData"`
	Signature       *string        `bson:"signature"`
	Status          string         `bson:"status"`
	DocumentURL     *string        `bson:"documentUrl"`
	ClientSigned    bool           `bson:"clientSigned"`
	LawyerSigned    bool           `bson:"lawyerSigned"`
	IssueDate       *time.Time     `bson:"issueDate"`
	ExpiryDate      *time.Time     `bson:"expiryDate"`
	RejectionReason *string        `bson:"rejectionReason"`
	Version         int64          `bson:"version"`
	CreatedAt       time.Time      `bson:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt"`
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, selects database and makes sure the indexes exist
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "name", Value: 1}}},
		},
		contractTypesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		contractsCollection: {
			{Keys: bson.D{{Key: "client", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "lawyer", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) CreateContract(ctx context.Context, c *model.Contract) error {
	_, err := s.db.Collection(contractsCollection).InsertOne(ctx, contractToDoc(c))
	return translate(err)
}

func (s *Store) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var doc contractDoc
	if err := s.db.Collection(contractsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return contractFromDoc(doc), nil
}

func (s *Store) ListContracts(ctx context.Context, filter service.ContractFilter) ([]*model.Contract, error) {
	query := bson.M{}
	if filter.ClientID != "" {
		query["client"] = filter.ClientID
	}
	if filter.LawyerID != "" {
		query["lawyer"] = filter.LawyerID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	cur, err := s.db.Collection(contractsCollection).Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []contractDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]*model.Contract, 0, len(docs))
	for _, doc := range docs {
		result = append(result, contractFromDoc(doc))
	}
	return result, nil
}

// UpdateContract writes c only if the stored version still equals c.Version
func (s *Store) UpdateContract(ctx context.Context, c *model.Contract) error {
	now := time.Now()
	doc := contractToDoc(c)
	doc.Version = c.Version + 1
	doc.UpdatedAt = now

	coll := s.db.Collection(contractsCollection)
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": c.ID, "version": c.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := coll.CountDocuments(ctx, bson.M{"_id": c.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return service.ErrNotFound
		}
		return service.ErrConflict
	}

	c.Version++
	c.UpdatedAt = now
	return nil
}

func (s *Store) GetContractType(ctx context.Context, id string) (*model.ContractType, error) {
	var doc contractTypeDoc
	if err := s.db.Collection(contractTypesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return contractTypeFromDoc(doc), nil
}

func (s *Store) ListContractTypes(ctx context.Context) ([]*model.ContractType, error) {
	cur, err := s.db.Collection(contractTypesCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []contractTypeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]*model.ContractType, 0, len(docs))
	for _, doc := range docs {
		result = append(result, contractTypeFromDoc(doc))
	}
	return result, nil
}

// ReplaceContractTypes clears the collection and inserts types. It is not
// atomic on a standalone server.
func (s *Store) ReplaceContractTypes(ctx context.Context, types []*model.ContractType) error {
	coll := s.db.Collection(contractTypesCollection)
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(types) == 0 {
		return nil
	}
	docs := make([]any, 0, len(types))
	for _, ct := range types {
		docs = append(docs, contractTypeToDoc(ct))
	}
	_, err := coll.InsertMany(ctx, docs)
	return translate(err)
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	doc := userToDoc(u)
	doc.Email = strings.ToLower(doc.Email)
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, doc)
	return translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (s *Store) ListUsersByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"role": string(role)},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]*model.User, 0, len(docs))
	for _, doc := range docs {
		result = append(result, userFromDoc(doc))
	}
	return result, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return userFromDoc(doc), nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return service.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return service.ErrDuplicate
	}
	return err
}

func userToDoc(u *model.User) userDoc {
	return userDoc{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		Role:                 string(u.Role),
		Phone:                u.Phone,
		Specialization:       u.Specialization,
		BarAssociationNumber: u.BarAssociationNumber,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func userFromDoc(d userDoc) *model.User {
	return &model.User{
		ID:                   d.ID,
		Name:                 d.Name,
		Email:                d.Email,
		PasswordHash:         d.PasswordHash,
		Role:                 model.Role(d.Role),
		Phone:                d.Phone,
		Specialization:       d.Specialization,
		BarAssociationNumber: d.BarAssociationNumber,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func contractTypeToDoc(ct *model.ContractType) contractTypeDoc {
	fields := make([]fieldDoc, 0, len(ct.RequiredFields))
	for _, f := range ct.RequiredFields {
		fields = append(fields, fieldDoc{Name: f.Name, Label: f.Label, Kind: string(f.Kind), Options: f.Options})
	}
	return contractTypeDoc{
		ID:             ct.ID,
		Name:           ct.Name,
		Description:    ct.Description,
		RequiredFields: fields,
		Template:       ct.Template,
		ValidityPeriod: ct.ValidityPeriod,
		CreatedAt:      ct.CreatedAt,
	}
}

func contractTypeFromDoc(d contractTypeDoc) *model.ContractType {
	fields := make([]model.Field, 0, len(d.RequiredFields))
	for _, f := range d.RequiredFields {
		fields = append(fields, model.Field{Name: f.Name, Label: f.Label, Kind: model.FieldKind(f.Kind), Options: f.Options})
	}
	return &model.ContractType{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		RequiredFields: fields,
		Template:       d.Template,
		ValidityPeriod: d.ValidityPeriod,
		CreatedAt:      d.CreatedAt,
	}
}

func contractToDoc(c *model.Contract) contractDoc {
	data := c.ContractData
	if data == nil {
		data = map[string]any{}
	}
	return contractDoc{
		ID:              c.ID,
		ContractTypeID:  c.ContractTypeID,
		ClientID:        c.ClientID,
		LawyerID:        c.LawyerID,
		ContractData:    data,
		Signature:       c.Signature,
		Status:          string(c.Status),
		DocumentURL:     c.DocumentURL,
		ClientSigned:    c.ClientSigned,
		LawyerSigned:    c.LawyerSigned,
		IssueDate:       c.IssueDate,
		ExpiryDate:      c.ExpiryDate,
		RejectionReason: c.RejectionReason,
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func contractFromDoc(d contractDoc) *model.Contract {
	data := d.ContractData
	if data == nil {
		data = map[string]any{}
	}
	return &model.Contract{
		ID:              d.ID,
		ContractTypeID:  d.ContractTypeID,
		ClientID:        d.ClientID,
		LawyerID:        d.LawyerID,
		ContractData:    data,
		Signature:       d.Signature,
		Status:          model.Status(d.Status),
		DocumentURL:     d.DocumentURL,
		ClientSigned:    d.ClientSigned,
		LawyerSigned:    d.LawyerSigned,
		IssueDate:       d.IssueDate,
		ExpiryDate:      d.ExpiryDate,
		RejectionReason: d.RejectionReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
