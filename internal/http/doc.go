// Package http exposes the showcase JSON API and the public site.
//
// API routes mount under /api:
//   - Auth: /auth/signin, /auth/signout, /auth/session
//   - Products: /products, /products/{slug}, /products/{slug}/publish
//   - Images: /images, /upload, /upload/remote
//   - Technologies: /technologies, /technologies/{id}
//   - Users: /users, /users/{id}, /users/{id}/role, /roles
//   - Content: /content, /content/{id}, /content/{id}/publish, /content/resolve
//   - Builder pages: /pages, /pages/{id}, /pages/{id}/publish
//   - Widgets: /widgets, /widgets/preview
//
// Every mutating route sits behind the admin guard.
package http
