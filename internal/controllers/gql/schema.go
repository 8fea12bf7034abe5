package gql

import (
	"github.com/graph-gophers/graphql-go"
)

const Schema = `
schema {
	query: Query
	mutation: Mutation
	subscription: Subscription
}

scalar Time

# A file sent as part of a GraphQL multipart request.
scalar Upload

# The type of change to an order.
enum ChangeType {
	ALL
	CREATED
	UPDATED
	DELETED
}

enum Ordering {
	ASC
	DESC
}

# One submission of handwritten tickets for an order.
type OrderInfo {
	id: ID!
	additionalInfo: String
	# If this entry has been served.
	completed: Boolean!
	imageUrls: [String!]!
	createdAt: Time
	updatedAt: Time
}

type Order {
	id: ID!
	table: String!
	closed: Boolean!
	orderInfoList: [OrderInfo!]!
	createdAt: Time
	updatedAt: Time
}

# changeType is only set when subscribed to ALL.
type OrderPublished {
	order: Order!
	changeType: ChangeType
}

type Product {
	name: String!
	price: Float!
	quantity: Int!
}

input ProductInput {
	name: String!
	price: Float!
	quantity: Int!
}

input NewPrintOrderInput {
	products: [ProductInput!]!
}

# At least one of svgList, b64list or uploadImageList must be given.
input OrderInfoInput {
	additionalInfo: String
	completed: Boolean
	svgList: [String!]
	b64list: [String!]
	uploadImageList: [Upload]
}

input CreateOrderInput {
	table: String!
	orderInfo: OrderInfoInput!
}

input UpdateOrderInput {
	id: ID!
	# Rejected unless table reassignment is enabled.
	table: String
	closed: Boolean
}

type Query {
	# Orders matching every given filter. closed defaults to false.
	orders(table: String, closed: Boolean = false, orderByCreated: Ordering, orderByUpdated: Ordering): [Order!]!
	order(id: ID!): Order!
	# Sends the products to the receipt printer and returns them.
	newPrintOrder(printOrder: NewPrintOrderInput!): [Product!]!
}

type Mutation {
	createOrder(input: CreateOrderInput!, uploadImageList: [Upload]): Order!
	updateOrder(input: UpdateOrderInput!): Order!
	addOrderInfo(id: ID!, orderInfoInput: OrderInfoInput!, uploadImageList: [Upload]): Order!
	# Returns the order as it was before deletion.
	deleteOrder(id: ID!): Order!
}

type Subscription {
	ordersChanged(changeType: ChangeType = ALL): OrderPublished!
}
`

func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, r, graphql.MaxDepth(12))
}
