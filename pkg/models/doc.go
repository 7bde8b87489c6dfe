// Package models contains the wire types exchanged with the MDB backend.
//
// All types are server-owned: the client only decodes them from responses
// (User, ForumThread, ForumPost, PageResponse) or encodes the small request
// bodies it sends (CreateThreadRequest, CreatePostRequest).
package models
