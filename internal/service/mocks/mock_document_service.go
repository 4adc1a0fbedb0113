package mocks

import (
	"context"

	"docvault/internal/listing"
	"docvault/internal/model"
	"docvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, requesterID string, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, requesterID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, requesterID string, p listing.Params) (*service.DocumentListResult, error) {
	args := m.Called(ctx, requesterID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, requesterID, id string) (*model.Document, error) {
	args := m.Called(ctx, requesterID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, requesterID, id string) (*service.Download, error) {
	args := m.Called(ctx, requesterID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, requesterID, id string, in service.UpdateInput) (*model.Document, error) {
	args := m.Called(ctx, requesterID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) SetPermission(ctx context.Context, requesterID, id, userID string, level model.AccessLevel) (*model.Document, error) {
	args := m.Called(ctx, requesterID, id, userID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, requesterID, id string) error {
	args := m.Called(ctx, requesterID, id)
	return args.Error(0)
}
